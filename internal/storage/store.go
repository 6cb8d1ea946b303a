package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/resimlab/resim/internal/engine"
)

// Store persists simulation runs as directories under baseDir: one
// metadata.json plus per-regime cells/drugs CSVs and a shared fht.csv.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Seed        int64     `json:"seed"`
	Trials      int       `json:"trials"`
	HorizonDays int       `json:"horizon_days"`
	Dose        float64   `json:"dose"`
}

const missingMarker = "NA"

var regimes = []string{"control", "case"}

func (s *Store) Save(meta RunMetadata, out *engine.Output) (string, error) {
	runID := fmt.Sprintf("resim_%d", time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	for _, regime := range regimes {
		res := out.Control
		if regime == "case" {
			res = out.Case
		}
		if err := writeCells(filepath.Join(runDir, regime+"_cells.csv"), res.Cells); err != nil {
			return "", err
		}
		if err := writeDrugs(filepath.Join(runDir, regime+"_drugs.csv"), res.Drugs); err != nil {
			return "", err
		}
	}

	if err := writeFHT(filepath.Join(runDir, "fht.csv"), out); err != nil {
		return "", err
	}

	return runID, nil
}

func writeCells(path string, rows []engine.CellRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"sensitive", "primary_resistant", "acquired_resistant", "quiescent", "total", "trial", "day"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			ftoa(r.Sensitive), ftoa(r.PrimaryResistant), ftoa(r.AcquiredResistant),
			ftoa(r.Quiescent), ftoa(r.Total),
			strconv.Itoa(r.Trial), strconv.Itoa(r.Day),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return w.Error()
}

func writeDrugs(path string, rows []engine.DrugRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"concentration", "trial", "day"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write([]string{ftoa(r.Concentration), strconv.Itoa(r.Trial), strconv.Itoa(r.Day)}); err != nil {
			return err
		}
	}
	return w.Error()
}

func writeFHT(path string, out *engine.Output) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"regime", "trial", "day"}); err != nil {
		return err
	}
	for _, regime := range regimes {
		res := out.Control
		if regime == "case" {
			res = out.Case
		}
		for trial, ht := range res.HittingTimes {
			day := missingMarker
			if ht.Observed {
				day = strconv.Itoa(ht.Day)
			}
			if err := w.Write([]string{regime, strconv.Itoa(trial), day}); err != nil {
				return err
			}
		}
	}
	return w.Error()
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadRun reads both regimes' tables and hitting times back into an Output.
func (s *Store) LoadRun(runID string) (*engine.Output, error) {
	runDir := filepath.Join(s.baseDir, runID)
	out := &engine.Output{Control: &engine.Result{}, Case: &engine.Result{}}

	for _, regime := range regimes {
		res := out.Control
		if regime == "case" {
			res = out.Case
		}
		cells, err := readCells(filepath.Join(runDir, regime+"_cells.csv"))
		if err != nil {
			return nil, err
		}
		drugs, err := readDrugs(filepath.Join(runDir, regime+"_drugs.csv"))
		if err != nil {
			return nil, err
		}
		res.Cells = cells
		res.Drugs = drugs
	}

	if err := readFHT(filepath.Join(runDir, "fht.csv"), out); err != nil {
		return nil, err
	}
	return out, nil
}

func readCells(path string) ([]engine.CellRow, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	rows := make([]engine.CellRow, 0, len(records))
	for _, rec := range records {
		if len(rec) != 7 {
			continue
		}
		var r engine.CellRow
		r.Sensitive, _ = strconv.ParseFloat(rec[0], 64)
		r.PrimaryResistant, _ = strconv.ParseFloat(rec[1], 64)
		r.AcquiredResistant, _ = strconv.ParseFloat(rec[2], 64)
		r.Quiescent, _ = strconv.ParseFloat(rec[3], 64)
		r.Total, _ = strconv.ParseFloat(rec[4], 64)
		r.Trial, _ = strconv.Atoi(rec[5])
		r.Day, _ = strconv.Atoi(rec[6])
		rows = append(rows, r)
	}
	return rows, nil
}

func readDrugs(path string) ([]engine.DrugRow, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	rows := make([]engine.DrugRow, 0, len(records))
	for _, rec := range records {
		if len(rec) != 3 {
			continue
		}
		var r engine.DrugRow
		r.Concentration, _ = strconv.ParseFloat(rec[0], 64)
		r.Trial, _ = strconv.Atoi(rec[1])
		r.Day, _ = strconv.Atoi(rec[2])
		rows = append(rows, r)
	}
	return rows, nil
}

func readFHT(path string, out *engine.Output) error {
	records, err := readCSV(path)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if len(rec) != 3 {
			continue
		}
		res := out.Control
		if rec[0] == "case" {
			res = out.Case
		}
		ht := engine.HittingTime{}
		if rec[2] != missingMarker {
			day, err := strconv.Atoi(rec[2])
			if err != nil {
				continue
			}
			ht = engine.HittingTime{Day: day, Observed: true}
		}
		res.HittingTimes = append(res.HittingTimes, ht)
	}
	return nil
}

// readCSV returns the data records of a headered CSV file.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, nil
	}
	return records[1:], nil
}
