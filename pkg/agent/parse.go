package agent

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

var (
	fenceRe  = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	objectRe = regexp.MustCompile(`(?s)\{.*\}`)
)

// cleanReply strips markdown fences and any prose around the outermost JSON
// object of a model reply.
func cleanReply(raw string) string {
	s := strings.TrimSpace(raw)
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}
	if m := objectRe.FindString(s); m != "" {
		s = m
	}
	return s
}

// smartParse decodes a model reply into v, escalating from strict JSON to
// json-repair and finally to the lenient hjson reader.
func smartParse(raw string, v interface{}) error {
	s := cleanReply(raw)
	if s == "" {
		return fmt.Errorf("empty reply")
	}

	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}

	if repaired, err := jsonrepair.RepairJSON(s); err == nil {
		if err := json.Unmarshal([]byte(repaired), v); err == nil {
			return nil
		}
	}

	var loose interface{}
	if err := hjson.Unmarshal([]byte(s), &loose); err != nil {
		return fmt.Errorf("reply is not JSON: %w", err)
	}
	data, err := json.Marshal(loose)
	if err != nil {
		return fmt.Errorf("re-encode reply: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("reply does not match the expected shape: %w", err)
	}
	return nil
}
