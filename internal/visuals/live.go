package visuals

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/browser"
)

const liveEditorBase = "https://mermaid.live/edit#pako:"

type liveState struct {
	Code    string `json:"code"`
	Mermaid string `json:"mermaid"`
}

// StripFence removes the markdown code fence around a chart, if any.
func StripFence(chart string) string {
	body := strings.TrimSpace(chart)
	body = strings.TrimPrefix(body, "```mermaid")
	body = strings.TrimSuffix(body, "```")
	return strings.TrimSpace(body) + "\n"
}

// LiveEditorURL encodes a chart into a mermaid.live editor link.
func LiveEditorURL(chart string) (string, error) {
	state, err := json.Marshal(liveState{
		Code:    StripFence(chart),
		Mermaid: `{"theme":"default"}`,
	})
	if err != nil {
		return "", fmt.Errorf("encode chart state: %w", err)
	}

	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return "", fmt.Errorf("compress chart state: %w", err)
	}
	if _, err := zw.Write(state); err != nil {
		return "", fmt.Errorf("compress chart state: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("compress chart state: %w", err)
	}

	return liveEditorBase + base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

// OpenInBrowser opens the chart in the mermaid.live editor.
func OpenInBrowser(chart string) error {
	url, err := LiveEditorURL(chart)
	if err != nil {
		return err
	}
	return browser.OpenURL(url)
}
