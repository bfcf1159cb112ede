package discovery

import (
	"fmt"
	"sort"
	"strings"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// TXTRecordsToStrings converts a TXTRecordMap to a slice of "key=value" strings.
// Keys are sorted so the output is stable.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	keys := make([]string, 0, len(txt))
	for k := range txt {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]string, 0, len(txt))
	for _, k := range keys {
		result = append(result, fmt.Sprintf("%s=%s", k, txt[k]))
	}
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a TXTRecordMap.
// Keys are case-insensitive in DNS-SD and are lowercased here.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		key, value, found := strings.Cut(s, "=")
		key = strings.ToLower(key)
		switch {
		case key == "":
			continue
		case found:
			txt[key] = value
		default:
			// Key without value (boolean flag)
			txt[key] = ""
		}
	}
	return txt
}
