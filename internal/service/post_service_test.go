package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"testing"
	"time"

	"github.com/pagecast/pagecast/internal/models"
	"github.com/pagecast/pagecast/internal/transfer"
)

func newPostServiceForValidation() PostService {
	// Validation paths under test all run before any repository access.
	return NewPostService(testConfig("http://unused"), nil, nil, nil, nil, nil, nil, nil)
}

func multipartFile(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("files", name)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	w.Close()

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("ReadForm: %v", err)
	}
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["files"][0]
}

func TestMediaPostTypeSniffsUploads(t *testing.T) {
	mp4Header := append([]byte{0, 0, 0, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm'}, make([]byte, 20)...)
	pngHeader := append([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}, make([]byte, 20)...)

	got, err := mediaPostType(multipartFile(t, "clip.mp4", mp4Header))
	if err != nil {
		t.Fatalf("mediaPostType: %v", err)
	}
	if got != models.PostTypeVideo {
		t.Fatalf("got %q for an mp4 upload, want %q", got, models.PostTypeVideo)
	}

	got, err = mediaPostType(multipartFile(t, "pic.png", pngHeader))
	if err != nil {
		t.Fatalf("mediaPostType: %v", err)
	}
	if got != models.PostTypePhoto {
		t.Fatalf("got %q for a png upload, want %q", got, models.PostTypePhoto)
	}

	if _, err := mediaPostType(multipartFile(t, "notes.bin", make([]byte, 32))); err == nil {
		t.Fatal("expected error for an unrecognized file type")
	}
}

func TestCreatePostRejectsShortLead(t *testing.T) {
	s := newPostServiceForValidation()

	pc := &transfer.PostCreation{
		TargetType:    models.TargetTypePage,
		TargetID:      "page-1",
		Message:       "hello",
		ScheduledUnix: time.Now().Add(5 * time.Minute).Unix(),
	}

	_, _, err := s.CreatePost(context.Background(), 42, pc, nil)
	if !errors.Is(err, ErrScheduleTooSoon) {
		t.Fatalf("got %v, want ErrScheduleTooSoon", err)
	}
}

func TestCreatePostRejectsPastTime(t *testing.T) {
	s := newPostServiceForValidation()

	pc := &transfer.PostCreation{
		TargetType:    models.TargetTypePage,
		TargetID:      "page-1",
		Message:       "hello",
		ScheduledUnix: time.Now().Add(-time.Hour).Unix(),
	}

	_, _, err := s.CreatePost(context.Background(), 42, pc, nil)
	if !errors.Is(err, ErrScheduleTooSoon) {
		t.Fatalf("got %v, want ErrScheduleTooSoon", err)
	}
}

func TestCreatePostRejectsEmptyPayload(t *testing.T) {
	s := newPostServiceForValidation()

	pc := &transfer.PostCreation{
		TargetType:    models.TargetTypeLinkedAccount,
		TargetID:      "ig-1",
		ScheduledUnix: time.Now().Add(time.Hour).Unix(),
	}

	_, _, err := s.CreatePost(context.Background(), 42, pc, nil)
	if err == nil {
		t.Fatal("expected error for a post with no message, link, or media")
	}
	if errors.Is(err, ErrScheduleTooSoon) {
		t.Fatalf("wrong rejection: %v", err)
	}
}

func TestCreatePostRejectsInvalidTarget(t *testing.T) {
	s := newPostServiceForValidation()

	pc := &transfer.PostCreation{
		TargetType:    "story",
		TargetID:      "x",
		Message:       "hello",
		ScheduledUnix: time.Now().Add(time.Hour).Unix(),
	}

	if _, _, err := s.CreatePost(context.Background(), 42, pc, nil); err == nil {
		t.Fatal("expected validation error for an unknown target type")
	}
}

func TestCreatePostRejectsMissingSchedule(t *testing.T) {
	s := newPostServiceForValidation()

	pc := &transfer.PostCreation{
		TargetType: models.TargetTypePage,
		TargetID:   "page-1",
		Message:    "hello",
	}

	if _, _, err := s.CreatePost(context.Background(), 42, pc, nil); err == nil {
		t.Fatal("expected validation error for a missing scheduled time")
	}
}
