package service

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jask/gapview/internal/database"
	"github.com/jask/gapview/internal/database/repository"
)

// IngestService loads gapminder rows into the observations table.
type IngestService struct {
	Observations *repository.ObservationRepo
	Clusters     *repository.ClusterRepo

	clusterCache map[string]int
}

type IngestResult struct {
	Imported int
	Errors   []error
}

// gapminderRow mirrors one element of the vega-datasets gapminder.json array.
type gapminderRow struct {
	Year       *json.Number    `json:"year"`
	Country    string          `json:"country"`
	Cluster    json.RawMessage `json:"cluster"`
	Pop        *json.Number    `json:"pop"`
	LifeExpect *json.Number    `json:"life_expect"`
	Fertility  *json.Number    `json:"fertility"`
}

// ImportJSON ingests a JSON array of gapminder rows. Row-level problems are collected
// in the result; a malformed document is returned as an error.
func (s *IngestService) ImportJSON(ctx context.Context, r io.Reader) (IngestResult, error) {
	res := IngestResult{}
	dec := json.NewDecoder(bufio.NewReader(r))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return res, fmt.Errorf("read json: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return res, fmt.Errorf("read json: expected array, got %v", tok)
	}

	idx := 0
	for dec.More() {
		idx++
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return res, fmt.Errorf("row %d: %w", idx, err)
		}
		var row gapminderRow
		if err := json.Unmarshal(raw, &row); err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("row %d: %w", idx, err))
			continue
		}
		o, err := s.fromJSON(ctx, row)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("row %d: %w", idx, err))
			continue
		}
		if err := s.Observations.Upsert(ctx, o); err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("row %d insert: %w", idx, err))
			continue
		}
		res.Imported++
	}
	if _, err := dec.Token(); err != nil {
		return res, fmt.Errorf("read json: %w", err)
	}
	return res, nil
}

func (s *IngestService) fromJSON(ctx context.Context, row gapminderRow) (repository.Observation, error) {
	country := strings.TrimSpace(row.Country)
	if country == "" {
		return repository.Observation{}, errors.New("country required")
	}
	if row.Year == nil || row.Pop == nil || row.LifeExpect == nil {
		return repository.Observation{}, errors.New("year, pop and life_expect required")
	}
	year, err := parseInt(row.Year.String())
	if err != nil {
		return repository.Observation{}, fmt.Errorf("year: %w", err)
	}
	pop, err := parseInt(row.Pop.String())
	if err != nil {
		return repository.Observation{}, fmt.Errorf("pop: %w", err)
	}
	life, err := strconv.ParseFloat(row.LifeExpect.String(), 64)
	if err != nil {
		return repository.Observation{}, fmt.Errorf("life_expect: %w", err)
	}
	var fert *float64
	if row.Fertility != nil {
		f, err := strconv.ParseFloat(row.Fertility.String(), 64)
		if err != nil {
			return repository.Observation{}, fmt.Errorf("fertility: %w", err)
		}
		fert = &f
	}
	clusterText, err := rawClusterText(row.Cluster)
	if err != nil {
		return repository.Observation{}, err
	}
	clusterID, err := s.clusterFor(ctx, clusterText)
	if err != nil {
		return repository.Observation{}, fmt.Errorf("cluster: %w", err)
	}
	return repository.Observation{
		ID:         repository.ObservationID(country, int(year)),
		Country:    country,
		ClusterID:  clusterID,
		Year:       int(year),
		Pop:        pop,
		LifeExpect: life,
		Fertility:  fert,
	}, nil
}

// rawClusterText accepts the numeric codes gapminder ships with or a label string.
func rawClusterText(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", errors.New("cluster required")
	}
	var label string
	if err := json.Unmarshal(raw, &label); err == nil {
		return label, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("cluster: %w", err)
	}
	return n.String(), nil
}

var csvColumns = []string{"country", "year", "cluster", "pop", "life_expect"}

// ImportCSV ingests a CSV whose header names the gapminder columns in any order.
// fertility is optional.
func (s *IngestService) ImportCSV(ctx context.Context, r io.Reader) (IngestResult, error) {
	res := IngestResult{}
	csvr := csv.NewReader(bufio.NewReader(r))
	csvr.TrimLeadingSpace = true
	csvr.FieldsPerRecord = -1

	header, err := csvr.Read()
	if err != nil {
		return res, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, want := range csvColumns {
		if _, ok := cols[want]; !ok {
			return res, fmt.Errorf("read header: missing column %q", want)
		}
	}
	fertCol, hasFert := cols["fertility"]

	line := 1
	for {
		line++
		rec, err := csvr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		field := func(name string) string {
			i := cols[name]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		country := field("country")
		if country == "" {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: country required", line))
			continue
		}
		year, err := parseInt(field("year"))
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d year: %w", line, err))
			continue
		}
		pop, err := parseInt(field("pop"))
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d pop: %w", line, err))
			continue
		}
		life, err := strconv.ParseFloat(field("life_expect"), 64)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d life_expect: %w", line, err))
			continue
		}
		var fert *float64
		if hasFert && fertCol < len(rec) && strings.TrimSpace(rec[fertCol]) != "" {
			f, err := strconv.ParseFloat(strings.TrimSpace(rec[fertCol]), 64)
			if err != nil {
				res.Errors = append(res.Errors, fmt.Errorf("line %d fertility: %w", line, err))
				continue
			}
			fert = &f
		}
		clusterID, err := s.clusterFor(ctx, field("cluster"))
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d cluster: %w", line, err))
			continue
		}

		o := repository.Observation{
			ID:         repository.ObservationID(country, int(year)),
			Country:    country,
			ClusterID:  clusterID,
			Year:       int(year),
			Pop:        pop,
			LifeExpect: life,
			Fertility:  fert,
		}
		if err := s.Observations.Upsert(ctx, o); err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d insert: %w", line, err))
			continue
		}
		res.Imported++
	}
	return res, nil
}

// clusterFor maps a numeric code or a label to a cluster id, creating the cluster if needed.
func (s *IngestService) clusterFor(ctx context.Context, text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, errors.New("cluster required")
	}
	if s.clusterCache == nil {
		s.clusterCache = make(map[string]int)
	}
	key := strings.ToLower(text)
	if id, ok := s.clusterCache[key]; ok {
		return id, nil
	}

	var id int
	if code, err := strconv.Atoi(text); err == nil {
		if code >= repository.LabelIDBase {
			return 0, fmt.Errorf("code %d out of range", code)
		}
		want := database.ClusterLabel(code)
		existing, err := s.Clusters.Get(ctx, code)
		if err != nil {
			return 0, err
		}
		switch {
		case existing == nil:
			if err := s.Clusters.Upsert(ctx, repository.Cluster{ID: code, Label: want, SortOrder: code}); err != nil {
				return 0, err
			}
		case existing.Label != want:
			return 0, fmt.Errorf("code %d is held by %q, want %q", code, existing.Label, want)
		}
		id = code
	} else {
		existing, err := s.Clusters.ByLabel(ctx, text)
		if err != nil {
			return 0, err
		}
		if existing != nil {
			id = existing.ID
		} else {
			next, err := s.Clusters.NextLabelID(ctx)
			if err != nil {
				return 0, err
			}
			if err := s.Clusters.Upsert(ctx, repository.Cluster{ID: next, Label: text, SortOrder: next}); err != nil {
				return 0, err
			}
			id = next
		}
	}
	s.clusterCache[key] = id
	return id, nil
}

// parseInt accepts plain integers and float renderings like "1.2626e+09".
func parseInt(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(f)), nil
}
