//go:build !ocr

package ocr

import (
	"errors"
	"image"
	"testing"
)

func TestStub_New(t *testing.T) {
	client, err := New()
	if !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("expected ErrOCRNotEnabled, got %v", err)
	}
	if client != nil {
		t.Error("expected nil client when OCR is disabled")
	}
}

func TestStub_NilClient(t *testing.T) {
	var client *Client
	if err := client.Close(); err != nil {
		t.Errorf("expected Close on nil client to succeed, got %v", err)
	}
	if _, err := client.Words(image.NewGray(image.Rect(0, 0, 1, 1))); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("expected ErrOCRNotEnabled from Words, got %v", err)
	}
	if err := client.SetLanguage("eng"); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("expected ErrOCRNotEnabled from SetLanguage, got %v", err)
	}
	if client.PageSegMode() != PSM_AUTO {
		t.Errorf("expected auto, got %s", client.PageSegMode())
	}
}

func TestStub_GuardFails(t *testing.T) {
	var client *Client
	called := false
	err := WithPageSegMode(client, PSM_SINGLE_BLOCK, func() error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("expected ErrOCRNotEnabled, got %v", err)
	}
	if called {
		t.Error("expected the guarded function not to run")
	}
}

func TestStub_Languages(t *testing.T) {
	if _, err := Languages(); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("expected ErrOCRNotEnabled, got %v", err)
	}
	if Version() != "" {
		t.Errorf("expected empty version, got %q", Version())
	}
}
