package universe

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/fairvalue/screener/internal/contracts"
)

// Suffix marks a ticker list file
const Suffix = "_tickers.csv"

// ErrUnknownUniverse is returned when no list matches a name
var ErrUnknownUniverse = errors.New("unknown universe")

// tickerColumns are matched in order before falling back to the first column
var tickerColumns = []string{"Symbol", "Ticker", "symbol", "ticker"}

// Discover maps pretty names to every *_tickers.csv in dir.
// "dow_30_tickers.csv" becomes "Dow 30". A missing dir yields an empty map.
func Discover(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read universe dir: %w", err)
	}

	out := make(map[string]string)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(name), Suffix) {
			continue
		}
		out[PrettyName(name)] = filepath.Join(dir, name)
	}
	return out, nil
}

// Names returns the discovered universe names, sorted
func Names(dir string) ([]string, error) {
	paths, err := Discover(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(paths))
	for n := range paths {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// PrettyName turns a file name into a display name
func PrettyName(fname string) string {
	key := fname[:len(fname)-len(Suffix)]
	key = strings.NewReplacer("_", " ", "-", " ").Replace(key)

	// 단어 첫 글자만 대문자 (숫자 뒤 문자도 새 단어)
	var b strings.Builder
	prevLetter := false
	for _, r := range key {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}

// Load resolves name (case-insensitive) in dir and reads its tickers
func Load(dir, name string) ([]string, error) {
	paths, err := Discover(dir)
	if err != nil {
		return nil, err
	}
	for pretty, path := range paths {
		if strings.EqualFold(pretty, strings.TrimSpace(name)) {
			return LoadCSV(path)
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownUniverse, name)
}

// LoadCSV reads unique, uppercased tickers from path.
// The Symbol/Ticker column is used when present, else the first column.
func LoadCSV(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ticker list: %w", err)
	}
	defer file.Close()

	return ReadCSV(file)
}

// ReadCSV is LoadCSV over an open reader
func ReadCSV(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := 0
	found := false
	for _, want := range tickerColumns {
		for i, h := range header {
			if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) == want {
				col, found = i, true
				break
			}
		}
		if found {
			break
		}
	}

	seen := make(map[string]bool)
	tickers := []string{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read ticker list: %w", err)
		}
		if col >= len(record) {
			continue
		}

		t := contracts.CanonicalTicker(record[col])
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tickers = append(tickers, t)
	}

	return tickers, nil
}
