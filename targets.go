package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Target is one batch job: a storefront, the country to switch it to, and where
// its cookies go.
type Target struct {
	Locale      string
	CountryCode string
	Policy      SelectionPolicy
	CookiePath  string
	HTMLPath    string
}

func (t Target) String() string {
	return fmt.Sprintf("%s->%s", strings.ToUpper(t.Locale), strings.ToUpper(t.CountryCode))
}

// defaultCookiePath is cookies_<locale>.json with dots replaced, e.g. cookies_co_uk.json.
func defaultCookiePath(locale string) string {
	return "cookies_" + strings.ReplaceAll(strings.ToLower(locale), ".", "_") + ".json"
}

// LoadTargets reads a targets file.
// Format per line: locale,country[,selection[,cookiePath]]
func LoadTargets(filename string) ([]Target, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open targets file: %w", err)
	}
	defer file.Close()

	targets, err := parseTargets(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no targets found in %s", filename)
	}
	return targets, nil
}

func parseTargets(r io.Reader) ([]Target, error) {
	var targets []Target

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		if len(fields) < 2 || len(fields) > 4 || fields[0] == "" || fields[1] == "" {
			return nil, fmt.Errorf("line %d: want locale,country[,selection[,cookiePath]]", lineNum)
		}

		t := Target{
			Locale:      fields[0],
			CountryCode: fields[1],
			Policy:      SelectionCountry,
			CookiePath:  defaultCookiePath(fields[0]),
		}
		if len(fields) > 2 {
			policy, err := ParseSelectionPolicy(fields[2])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			t.Policy = policy
		}
		if len(fields) > 3 && fields[3] != "" {
			t.CookiePath = fields[3]
		}
		targets = append(targets, t)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading targets: %w", err)
	}
	return targets, nil
}
