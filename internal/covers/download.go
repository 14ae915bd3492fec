package covers

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
)

// thumbnailHeight matches the gallery tile size; width follows the aspect
// ratio.
const thumbnailHeight = 440

// Download fetches a cover, verifies it decodes as an image and writes a
// resized thumbnail to destPath. The output format follows the path's
// extension. data: URIs from the inline backend are handled too.
func Download(ctx context.Context, hc *http.Client, coverURL, destPath string) error {
	data, err := coverBytes(ctx, hc, coverURL)
	if err != nil {
		return err
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("cover does not decode as an image: %w", err)
	}

	thumb := imaging.Resize(img, 0, thumbnailHeight, imaging.Lanczos)
	if err := imaging.Save(thumb, destPath); err != nil {
		return fmt.Errorf("failed to save cover: %w", err)
	}
	return nil
}

func coverBytes(ctx context.Context, hc *http.Client, coverURL string) ([]byte, error) {
	if strings.HasPrefix(coverURL, "data:") {
		_, b64, found := strings.Cut(coverURL, ",")
		if !found {
			return nil, fmt.Errorf("malformed data URI")
		}
		data, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode inline image: %w", err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cover download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
