// Package wordfreq builds practice word lists from the wordfreq frequency
// dataset published on PyPI as a Python wheel.
package wordfreq

import (
	"archive/zip"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/verte-zerg/wpmhero/internal/wordlist"
)

// DefaultIndexURL is the PyPI JSON metadata endpoint for wordfreq.
const DefaultIndexURL = "https://pypi.org/pypi/wordfreq/json"

const (
	dataPrefix = "wordfreq/data/"
	dataSuffix = ".msgpack.gz"

	minWordRunes = 2
	maxWordRunes = 20
)

// Sizes lists the dataset sizes, preferred first.
var Sizes = []string{"large", "small"}

// Source downloads and caches the wordfreq wheel.
type Source struct {
	IndexURL string
	CacheDir string
	Client   *http.Client
}

// Wheel is a downloaded wordfreq distribution.
type Wheel struct {
	Version string
	Path    string
	Cached  bool
}

type pypiIndex struct {
	Info struct {
		Version string `json:"version"`
	} `json:"info"`
	URLs []pypiFile `json:"urls"`
}

type pypiFile struct {
	URL         string `json:"url"`
	Filename    string `json:"filename"`
	PackageType string `json:"packagetype"`
}

// Fetch resolves the latest wheel from the index and downloads it unless a
// copy with the same file name is already cached.
func (s Source) Fetch(ctx context.Context) (Wheel, error) {
	if s.CacheDir == "" {
		return Wheel{}, errors.New("cache directory is required")
	}
	indexURL := s.IndexURL
	if indexURL == "" {
		indexURL = DefaultIndexURL
	}

	var index pypiIndex
	if err := s.get(ctx, indexURL, func(body io.Reader) error {
		return json.NewDecoder(body).Decode(&index)
	}); err != nil {
		return Wheel{}, fmt.Errorf("failed to read package index: %w", err)
	}
	file, ok := pickWheel(index.URLs)
	if !ok {
		return Wheel{}, fmt.Errorf("no wheel published for wordfreq %s", index.Info.Version)
	}

	if err := os.MkdirAll(s.CacheDir, 0o755); err != nil {
		return Wheel{}, fmt.Errorf("failed to create cache dir: %w", err)
	}
	dest := filepath.Join(s.CacheDir, path.Base(file.Filename))
	wheel := Wheel{Version: index.Info.Version, Path: dest}
	if _, err := os.Stat(dest); err == nil {
		wheel.Cached = true
		return wheel, nil
	}

	tmp, err := os.CreateTemp(s.CacheDir, "wordfreq-*.part")
	if err != nil {
		return Wheel{}, fmt.Errorf("failed to create temp wheel: %w", err)
	}
	defer func() {
		// Removing an already renamed file fails harmlessly.
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()
	if err := s.get(ctx, file.URL, func(body io.Reader) error {
		_, err := io.Copy(tmp, body)
		return err
	}); err != nil {
		return Wheel{}, fmt.Errorf("failed to download %s: %w", file.Filename, err)
	}
	if err := tmp.Close(); err != nil {
		return Wheel{}, fmt.Errorf("failed to close temp wheel: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return Wheel{}, fmt.Errorf("failed to move wheel into cache: %w", err)
	}
	return wheel, nil
}

func (s Source) get(ctx context.Context, url string, read func(io.Reader) error) error {
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			// Body already consumed.
			_ = cerr
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return read(resp.Body)
}

// pickWheel prefers the pure-python wheel.
func pickWheel(files []pypiFile) (pypiFile, bool) {
	var fallback *pypiFile
	for i, f := range files {
		if f.PackageType != "bdist_wheel" {
			continue
		}
		if strings.HasSuffix(f.Filename, "-py3-none-any.whl") {
			return f, true
		}
		if fallback == nil {
			fallback = &files[i]
		}
	}
	if fallback == nil {
		return pypiFile{}, false
	}
	return *fallback, true
}

// Catalog maps a language code to the dataset sizes shipped for it.
type Catalog map[string][]string

// Languages returns the sorted language codes in the catalog.
func (c Catalog) Languages() []string {
	langs := make([]string, 0, len(c))
	for lang := range c {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Size picks the preferred dataset size available for lang.
func (c Catalog) Size(lang string) (string, bool) {
	for _, want := range Sizes {
		for _, have := range c[lang] {
			if have == want {
				return want, true
			}
		}
	}
	return "", false
}

// ReadCatalog lists the frequency tables contained in a wheel.
func ReadCatalog(wheelPath string) (Catalog, error) {
	zr, err := zip.OpenReader(wheelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open wheel: %w", err)
	}
	defer closeZip(zr)

	catalog := Catalog{}
	for _, f := range zr.File {
		if lang, size, ok := parseDataName(f.Name); ok {
			catalog[lang] = append(catalog[lang], size)
		}
	}
	if len(catalog) == 0 {
		return nil, errors.New("wheel contains no frequency tables")
	}
	return catalog, nil
}

// parseDataName splits "wordfreq/data/large_en.msgpack.gz" into its
// language and size.
func parseDataName(name string) (lang, size string, ok bool) {
	base, found := strings.CutPrefix(strings.ToLower(name), dataPrefix)
	if !found || strings.Contains(base, "/") {
		return "", "", false
	}
	base, found = strings.CutSuffix(base, dataSuffix)
	if !found {
		return "", "", false
	}
	size, lang, found = strings.Cut(base, "_")
	if !found || lang == "" {
		return "", "", false
	}
	for _, s := range Sizes {
		if s == size {
			return lang, size, true
		}
	}
	return "", "", false
}

// Extract returns up to limit practice words for lang, most frequent first.
// Words must be letters only, 2 to 20 runes long and pass the language filter.
func Extract(wheelPath, lang, size string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be greater than 0")
	}
	lang = strings.ToLower(lang)
	zr, err := zip.OpenReader(wheelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open wheel: %w", err)
	}
	defer closeZip(zr)

	name := dataPrefix + size + "_" + lang + dataSuffix
	var table *zip.File
	for _, f := range zr.File {
		if strings.EqualFold(f.Name, name) {
			table = f
			break
		}
	}
	if table == nil {
		return nil, fmt.Errorf("no %s table for %s", size, lang)
	}
	bins, err := readBins(table)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", table.Name, err)
	}

	keep := wordlist.FilterForLang(lang)
	seen := make(map[string]struct{})
	words := make([]string, 0, limit)
	for _, bin := range bins {
		for _, word := range bin {
			n := utf8.RuneCountInString(word)
			if n < minWordRunes || n > maxWordRunes || !keep(word) {
				continue
			}
			if _, dup := seen[word]; dup {
				continue
			}
			seen[word] = struct{}{}
			words = append(words, word)
			if len(words) == limit {
				return words, nil
			}
		}
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("no usable words for %s", lang)
	}
	return words, nil
}

// readBins decodes a cB frequency table: a header map followed by one list
// of words per centibel bin, most frequent bin first.
func readBins(f *zip.File) ([][]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rc.Close()
	}()
	gz, err := gzip.NewReader(rc)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = gz.Close()
	}()

	var items []any
	if err := msgpack.NewDecoder(gz).Decode(&items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errors.New("empty table")
	}
	if header, ok := items[0].(map[string]any); ok {
		if format, _ := header["format"].(string); format != "cB" {
			return nil, fmt.Errorf("unsupported table format %q", format)
		}
		items = items[1:]
	}
	bins := make([][]string, 0, len(items))
	for i, item := range items {
		list, ok := item.([]any)
		if !ok {
			return nil, fmt.Errorf("bin %d: unexpected %T", i, item)
		}
		bin := make([]string, 0, len(list))
		for _, w := range list {
			if s, ok := w.(string); ok {
				bin = append(bin, s)
			}
		}
		bins = append(bins, bin)
	}
	return bins, nil
}

// WriteAttribution stores the dataset attribution and the wheel's license
// next to the generated lists.
func WriteAttribution(wheelPath, dir string) error {
	license, err := readLicense(wheelPath)
	if err != nil {
		return err
	}
	files := map[string][]byte{
		"ATTRIBUTION.txt": []byte(attribution),
		"LICENSE.txt":     license,
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}

const attribution = `Word lists generated from the wordfreq dataset (https://github.com/rspeer/wordfreq).
Data license: CC BY-SA 4.0 (https://creativecommons.org/licenses/by-sa/4.0/).
Changes: filtered to alphabetic words of 2-20 letters and truncated to the requested size.
Includes data from Google Books Ngrams and the Leeds Internet Corpus; see the wordfreq
documentation for the full list of upstream sources.
`

func readLicense(wheelPath string) ([]byte, error) {
	zr, err := zip.OpenReader(wheelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open wheel: %w", err)
	}
	defer closeZip(zr)
	for _, f := range zr.File {
		dir, base := path.Split(f.Name)
		if !strings.HasSuffix(dir, ".dist-info/") || !strings.HasPrefix(strings.ToUpper(base), "LICENSE") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
		return data, nil
	}
	return nil, errors.New("license not found in wheel")
}

func closeZip(zr *zip.ReadCloser) {
	if cerr := zr.Close(); cerr != nil {
		// Read-only archive.
		_ = cerr
	}
}
