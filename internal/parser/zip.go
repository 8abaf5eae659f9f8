package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var zipMagic = []byte("PK\x03\x04")

// isZip sniffs the local file header; OOXML documents are zip archives,
// the legacy binary formats are not.
func isZip(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, len(zipMagic))
	if _, err := io.ReadFull(f, head); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return false, nil
		}
		return false, err
	}
	return bytes.Equal(head, zipMagic), nil
}

func readZipEntry(zr *zip.ReadCloser, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", name, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, nil
}

// numberedEntries returns entries matching re (one numeric group) ordered by that number.
func numberedEntries(zr *zip.ReadCloser, re *regexp.Regexp) []string {
	type entry struct {
		name string
		n    int
	}
	var entries []entry
	for _, f := range zr.File {
		m := re.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		entries = append(entries, entry{name: f.Name, n: n})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].n < entries[j].n })

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

type relationships struct {
	Items []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

// resolveParts maps relationship ids, in order, to zip entry names using the
// rels part at relsEntry. Relative targets are resolved against dir. Unknown
// ids are skipped; a missing rels part yields no names.
func resolveParts(zr *zip.ReadCloser, dir, relsEntry string, ids []string) ([]string, error) {
	data, err := readZipEntry(zr, relsEntry)
	if err != nil || data == nil {
		return nil, err
	}

	var rels relationships
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, fmt.Errorf("malformed %s: %w", relsEntry, err)
	}

	targets := make(map[string]string, len(rels.Items))
	for _, r := range rels.Items {
		targets[r.ID] = r.Target
	}

	var names []string
	for _, id := range ids {
		target, ok := targets[id]
		if !ok {
			continue
		}
		if strings.HasPrefix(target, "/") {
			names = append(names, strings.TrimPrefix(target, "/"))
		} else {
			names = append(names, path.Join(dir, target))
		}
	}
	return names, nil
}
