package pdf

import (
	"strings"

	"github.com/ledongthuc/pdf"
)

// metadata reads the document information dictionary and page count.
func (s *Service) metadata(path string) (*PDFMetadataResult, error) {
	info, err := s.validator.Check(path)
	if err != nil {
		return nil, err
	}

	result := &PDFMetadataResult{
		Path:         path,
		Size:         info.Size(),
		ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
	}

	err = withReader(path, func(r *pdf.Reader) error {
		result.Pages = r.NumPage()
		readInfo(r, result)
		return nil
	})
	if err != nil {
		return nil, extractError("read metadata", path, noPage, err)
	}
	return result, nil
}

func readInfo(r *pdf.Reader, result *PDFMetadataResult) {
	// a broken Info dictionary leaves the fields empty
	defer func() { _ = recover() }()

	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return
	}

	for key, dst := range map[string]*string{
		"Title":        &result.Title,
		"Author":       &result.Author,
		"Subject":      &result.Subject,
		"Keywords":     &result.Keywords,
		"Creator":      &result.Creator,
		"Producer":     &result.Producer,
		"CreationDate": &result.CreationDate,
		"ModDate":      &result.ModDate,
	} {
		if v := info.Key(key); !v.IsNull() {
			*dst = strings.TrimSpace(v.Text())
		}
	}
}
