package bot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestIsPDFDocument(t *testing.T) {
	tests := []struct {
		name string
		doc  *tgbotapi.Document
		want bool
	}{
		{"Nil", nil, false},
		{"PDF MIME type", &tgbotapi.Document{MimeType: "application/pdf"}, true},
		{"PDF MIME type upper case", &tgbotapi.Document{MimeType: "Application/PDF"}, true},
		{"PDF extension", &tgbotapi.Document{FileName: "Report.PDF", MimeType: "application/octet-stream"}, true},
		{"Other document", &tgbotapi.Document{FileName: "notes.txt", MimeType: "text/plain"}, false},
		{"No metadata", &tgbotapi.Document{}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := isPDFDocument(test.doc); got != test.want {
				t.Fatalf("isPDFDocument() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestFetchFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte("%PDF-1.4 body"))
		case "/large":
			_, _ = w.Write([]byte(strings.Repeat("x", 32)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()

	data, err := fetchFile(ctx, srv.Client(), srv.URL+"/ok", 16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "%PDF-1.4 body" {
		t.Fatalf("unexpected body: %q", data)
	}

	if _, err = fetchFile(ctx, srv.Client(), srv.URL+"/large", 16); !errors.Is(err, errFileTooLarge) {
		t.Fatalf("expected errFileTooLarge, got %v", err)
	}

	if _, err = fetchFile(ctx, srv.Client(), srv.URL+"/missing", 16); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestFetchFileKeepsURLOutOfErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	fileURL := srv.URL + "/file/botSECRET-TOKEN/documents/file.pdf"
	srv.Close()

	_, err := fetchFile(context.Background(), http.DefaultClient, fileURL, 16)
	if err == nil {
		t.Fatalf("expected error for closed server")
	}
	if strings.Contains(err.Error(), "SECRET-TOKEN") {
		t.Fatalf("error leaks the file URL: %v", err)
	}
}
