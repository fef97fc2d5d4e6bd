package idf

import (
	"fmt"
	"strings"

	"idfbuilder/internal/domain"
)

// Uploaded images only change through these helpers. Generation never
// touches them.

// AppendImages adds stored image paths in order, skipping blank entries.
func (d *Document) AppendImages(paths ...string) {
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		d.Invention.UploadedImages = append(d.Invention.UploadedImages, p)
	}
}

// RemoveImage deletes the image reference at index.
func (d *Document) RemoveImage(index int) error {
	images := d.Invention.UploadedImages
	if index < 0 || index >= len(images) {
		return &domain.ValidationError{Message: fmt.Sprintf("image index %d out of range (have %d)", index, len(images))}
	}
	out := make([]string, 0, len(images)-1)
	out = append(out, images[:index]...)
	d.Invention.UploadedImages = append(out, images[index+1:]...)
	return nil
}

// ReplaceImage swaps the image reference at index for path.
func (d *Document) ReplaceImage(index int, path string) error {
	images := d.Invention.UploadedImages
	if index < 0 || index >= len(images) {
		return &domain.ValidationError{Message: fmt.Sprintf("image index %d out of range (have %d)", index, len(images))}
	}
	if strings.TrimSpace(path) == "" {
		return &domain.ValidationError{Message: "image path is empty"}
	}
	d.Invention.UploadedImages = append([]string{}, images...)
	d.Invention.UploadedImages[index] = path
	return nil
}
