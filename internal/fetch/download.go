package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FileName returns the last path segment of rawURL, the name a download is
// saved under.
func FileName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing URL %q: %w", rawURL, err)
	}
	if u.Path == "" || strings.HasSuffix(u.Path, "/") {
		return "", fmt.Errorf("URL %q does not name a file", rawURL)
	}
	return path.Base(u.Path), nil
}

// Download streams rawURL into destDir under its path basename and returns
// the final path. Data is written to a hidden .part file and renamed into
// place only after the whole body arrived; on failure nothing is left behind.
func (c *Client) Download(ctx context.Context, rawURL, destDir string) (string, error) {
	name, err := FileName(rawURL)
	if err != nil {
		return "", err
	}
	destPath := filepath.Join(destDir, name)
	partPath := filepath.Join(destDir, "."+name+".part")

	if c.downloadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.downloadTimeout)
		defer cancel()
	}

	resp, err := c.rc.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(rawURL)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", name, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return "", fmt.Errorf("download of %s returned status %d", name, resp.StatusCode())
	}

	f, err := os.Create(partPath)
	if err != nil {
		return "", fmt.Errorf("creating download file: %w", err)
	}

	var total int64 = -1
	if resp.RawResponse != nil {
		total = resp.RawResponse.ContentLength
	}

	n, err := c.copyWithProgress(f, body, total)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("closing download file: %w", closeErr)
	}
	if err != nil {
		os.Remove(partPath)
		return "", err
	}

	if err := os.Rename(partPath, destPath); err != nil {
		os.Remove(partPath)
		return "", fmt.Errorf("moving download into place: %w", err)
	}

	c.log.WithField("file", destPath).Infof("downloaded %s bytes", printer.Sprintf("%d", n))
	return destPath, nil
}

func (c *Client) copyWithProgress(dst io.Writer, src io.Reader, total int64) (int64, error) {
	var downloaded int64
	lastPercent := -1

	buf := make([]byte, 32*1024)
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				return downloaded, fmt.Errorf("writing download: %w", writeErr)
			}
			downloaded += int64(n)
			if c.progress != nil && total > 0 {
				percent := int(downloaded * 100 / total)
				if percent != lastPercent {
					fmt.Fprintf(c.progress, "\rDownloading... %d%%", percent)
					lastPercent = percent
				}
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return downloaded, fmt.Errorf("reading download stream: %w", readErr)
		}
	}
	if c.progress != nil && total > 0 {
		fmt.Fprintln(c.progress)
	}

	if total > 0 && downloaded != total {
		return downloaded, fmt.Errorf("download truncated: got %d of %d bytes", downloaded, total)
	}
	return downloaded, nil
}
