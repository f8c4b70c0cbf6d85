package csvdir

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"binrent/internal/instance"
	"binrent/internal/opt"
)

// Source reads a catalog export: items.csv with columns
// id,profit,weight,compulsory and bins.csv with id,type,capacity,cost. Both
// files start with a header row. The budget is not part of the export.
type Source struct {
	Dir    string
	Budget float64
}

func (s Source) Name() string { return "csv-dir" }

func (s Source) Fetch(ctx context.Context) (opt.Instance, error) {
	items, err := readRows(filepath.Join(s.Dir, "items.csv"), 4)
	if err != nil {
		return opt.Instance{}, err
	}
	if err := ctx.Err(); err != nil {
		return opt.Instance{}, err
	}
	bins, err := readRows(filepath.Join(s.Dir, "bins.csv"), 4)
	if err != nil {
		return opt.Instance{}, err
	}

	inst := opt.Instance{Budget: s.Budget}
	for n, row := range items {
		it, err := parseItem(row)
		if err != nil {
			return opt.Instance{}, fmt.Errorf("items.csv line %d: %w", n+2, err)
		}
		inst.Items = append(inst.Items, it)
	}
	for n, row := range bins {
		b, err := parseBin(row)
		if err != nil {
			return opt.Instance{}, fmt.Errorf("bins.csv line %d: %w", n+2, err)
		}
		inst.Bins = append(inst.Bins, b)
	}
	if err := instance.Validate(inst); err != nil {
		return opt.Instance{}, err
	}
	return inst, nil
}

// readRows returns the data rows of a CSV file, header dropped.
func readRows(path string, cols int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = cols
	r.TrimLeadingSpace = true
	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: missing header", filepath.Base(path))
		}
		return nil, err
	}
	return r.ReadAll()
}

func parseItem(row []string) (opt.Item, error) {
	p, err := strconv.ParseFloat(row[1], 64)
	if err != nil {
		return opt.Item{}, fmt.Errorf("profit: %w", err)
	}
	w, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		return opt.Item{}, fmt.Errorf("weight: %w", err)
	}
	comp, err := parseFlag(row[3])
	if err != nil {
		return opt.Item{}, err
	}
	return opt.Item{ID: row[0], Profit: p, Weight: w, Compulsory: comp}, nil
}

func parseBin(row []string) (opt.Bin, error) {
	typ, err := strconv.Atoi(row[1])
	if err != nil {
		return opt.Bin{}, fmt.Errorf("type: %w", err)
	}
	c, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		return opt.Bin{}, fmt.Errorf("capacity: %w", err)
	}
	cost, err := strconv.ParseFloat(row[3], 64)
	if err != nil {
		return opt.Bin{}, fmt.Errorf("cost: %w", err)
	}
	return opt.NewBin(row[0], typ, c, cost), nil
}

func parseFlag(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y":
		return true, nil
	case "0", "false", "no", "n", "":
		return false, nil
	}
	return false, fmt.Errorf("compulsory: bad flag %q", s)
}
