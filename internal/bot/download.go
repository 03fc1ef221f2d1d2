package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot API servers refuse to hand out files larger than this.
const maxDocumentSize = 20 << 20

const pdfMIMEType = "application/pdf"

var errFileTooLarge = errors.New("file is too large")

func isPDFDocument(doc *tgbotapi.Document) bool {
	if doc == nil {
		return false
	}

	if strings.EqualFold(strings.TrimSpace(doc.MimeType), pdfMIMEType) {
		return true
	}

	return strings.EqualFold(path.Ext(strings.TrimSpace(doc.FileName)), ".pdf")
}

// fetchFile downloads fileURL into memory. The URL embeds the bot token, so
// it is kept out of returned errors.
func fetchFile(
	ctx context.Context,
	client *http.Client,
	fileURL string,
	limit int64,
) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, errors.New("create request: invalid file URL")
	}

	resp, err := client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}

		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (limit = %d bytes)", errFileTooLarge, limit)
	}

	return data, nil
}
