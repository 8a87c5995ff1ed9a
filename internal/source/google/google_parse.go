package google

import (
	"fmt"
	"strings"

	"financeviz/internal/core"
)

// parseTexts converts a values matrix into texts keyed by element id. The
// first row is a header naming at least the id and label columns; atemporal,
// temporal and links are optional. Links are written "text|url" and
// separated by newlines.
func parseTexts(values [][]interface{}) (map[string]core.Texts, error) {
	texts := map[string]core.Texts{}
	if len(values) == 0 {
		return texts, nil
	}
	headers := toStrings(values[0])
	colID := indexOf(headers, "id")
	colLabel := indexOf(headers, "label")
	if colID == -1 || colLabel == -1 {
		return nil, fmt.Errorf("unexpected texts header: need id and label; got headers=%v", headers)
	}
	colAtemporal := indexOf(headers, "atemporal")
	colTemporal := indexOf(headers, "temporal")
	colLinks := indexOf(headers, "links")

	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		id := safeGet(row, colID)
		if id == "" || strings.HasPrefix(id, "#") {
			continue
		}
		texts[id] = core.Texts{
			Label:     safeGet(row, colLabel),
			Atemporal: safeGet(row, colAtemporal),
			Temporal:  safeGet(row, colTemporal),
			Links:     parseLinks(safeGet(row, colLinks)),
		}
	}
	return texts, nil
}

func parseLinks(s string) []core.Link {
	var links []core.Link
	for _, line := range strings.Split(s, "\n") {
		text, url, ok := strings.Cut(line, "|")
		if !ok {
			continue
		}
		text, url = strings.TrimSpace(text), strings.TrimSpace(url)
		if url == "" {
			continue
		}
		links = append(links, core.Link{Text: text, URL: url})
	}
	return links
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
