package pdf

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	_ "golang.org/x/image/tiff"
)

// extractImages writes every image of a page into dir, named after the
// source file, page and image resource name.
func extractImages(path string, index int, dir string) ([]ImageInfo, error) {
	images := []ImageInfo{}
	err := withContext(path, true, func(ctx *model.Context) error {
		nr, err := pageNumber(index, ctx.PageCount)
		if err != nil {
			return err
		}

		found, err := pdfcpu.ExtractPageImages(ctx, nr, false)
		if err != nil {
			return fmt.Errorf("failed to extract images: %w", err)
		}
		if len(found) == 0 {
			return nil
		}

		if err := os.MkdirAll(dir, outputDirPerm); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		objNrs := make([]int, 0, len(found))
		for objNr := range found {
			objNrs = append(objNrs, objNr)
		}
		sort.Ints(objNrs)

		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		for _, objNr := range objNrs {
			img := found[objNr]
			file := filepath.Join(dir, fmt.Sprintf("%s_p%d_%s.%s", base, index, imageName(img, objNr), img.FileType))
			size, err := writeImage(file, img)
			if err != nil {
				return err
			}
			width, height := imageSize(ctx, objNr, img, file)
			images = append(images, ImageInfo{
				Name:         img.Name,
				File:         file,
				Format:       img.FileType,
				Width:        width,
				Height:       height,
				ObjectNumber: objNr,
				Size:         size,
			})
		}
		return nil
	})
	if err != nil {
		return nil, extractError("extract images", path, index, err)
	}
	return images, nil
}

func imageName(img model.Image, objNr int) string {
	if img.Name != "" {
		return img.Name
	}
	return fmt.Sprintf("obj%d", objNr)
}

// imageSize reports the pixel dimensions of an extracted image. Decoded
// images carry no size, so it falls back to the XObject dictionary and then
// to the header of the written file.
func imageSize(ctx *model.Context, objNr int, img model.Image, file string) (int, int) {
	if img.Width > 0 && img.Height > 0 {
		return img.Width, img.Height
	}
	if obj := imageObject(ctx, objNr); obj != nil && obj.ImageDict != nil {
		w, h := obj.ImageDict.IntEntry("Width"), obj.ImageDict.IntEntry("Height")
		if w != nil && h != nil && *w > 0 && *h > 0 {
			return *w, *h
		}
	}
	f, err := os.Open(file)
	if err != nil {
		return 0, 0
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

func writeImage(file string, img model.Image) (int64, error) {
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, outputFilePerm)
	if err != nil {
		return 0, fmt.Errorf("failed to create image file: %w", err)
	}
	n, err := io.Copy(f, img)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("failed to write image %s: %w", file, err)
	}
	return n, nil
}

func imageObject(ctx *model.Context, objNr int) *model.ImageObject {
	if ctx.Optimize == nil {
		return nil
	}
	return ctx.Optimize.ImageObjects[objNr]
}
