package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/studylock/pkg/models"
)

// Config defines a question-bank import. Files may be .csv or .xlsx; the
// extension decides.
type Config struct {
	FilePath  string
	SheetName string // xlsx only
	StartRow  int    // 1-based first data row, header rows above it are skipped
}

// DefaultConfig returns the default import configuration
func DefaultConfig(path string) Config {
	return Config{
		FilePath:  path,
		SheetName: "Sheet1",
		StartRow:  2,
	}
}

// Result holds the outcome of an import. Malformed rows are counted and
// described but never abort the load.
type Result struct {
	TotalProcessed int
	Imported       int
	Skipped        int
	Errors         []string
}

func (r *Result) skip(rowNum int, err error) {
	r.Skipped++
	r.Errors = append(r.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
	log.Printf("importer: skipping row %d: %v", rowNum, err)
}

// Questions loads plain learning items. Expected columns:
// id, grade, surface, meaning, topic (optional), category (optional).
func Questions(config Config) ([]models.Question, *Result, error) {
	rows, err := readRows(config)
	if err != nil {
		return nil, nil, err
	}

	result := &Result{}
	var questions []models.Question
	for i, row := range rows {
		rowNum := i + 1
		if rowNum < config.StartRow {
			continue
		}
		result.TotalProcessed++

		q, err := parseQuestion(row)
		if err != nil {
			result.skip(rowNum, err)
			continue
		}
		questions = append(questions, q)
		result.Imported++
	}
	return questions, result, nil
}

// Listening loads scripted conversation-listening items. Expected columns:
// id, script, prompt, option1..option4, correctIndex, explanation.
func Listening(config Config) ([]models.ListeningQuestion, *Result, error) {
	rows, err := readRows(config)
	if err != nil {
		return nil, nil, err
	}

	result := &Result{}
	var questions []models.ListeningQuestion
	for i, row := range rows {
		rowNum := i + 1
		if rowNum < config.StartRow {
			continue
		}
		result.TotalProcessed++

		q, err := parseListening(row)
		if err != nil {
			result.skip(rowNum, err)
			continue
		}
		questions = append(questions, q)
		result.Imported++
	}
	return questions, result, nil
}

func parseQuestion(row []string) (models.Question, error) {
	if len(row) < 4 {
		return models.Question{}, fmt.Errorf("expected at least 4 fields, got %d", len(row))
	}
	id, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
	if err != nil {
		return models.Question{}, fmt.Errorf("bad id %q: %v", row[0], err)
	}
	grade, err := strconv.Atoi(strings.TrimSpace(row[1]))
	if err != nil {
		return models.Question{}, fmt.Errorf("bad grade %q: %v", row[1], err)
	}
	q := models.Question{
		ID:      id,
		Grade:   grade,
		Surface: strings.TrimSpace(row[2]),
		Meaning: strings.TrimSpace(row[3]),
	}
	if q.Surface == "" || q.Meaning == "" {
		return models.Question{}, fmt.Errorf("empty surface or meaning")
	}
	if len(row) > 4 {
		q.Topic = strings.TrimSpace(row[4])
	}
	if len(row) > 5 {
		q.Category = strings.TrimSpace(row[5])
	}
	return q, nil
}

func parseListening(row []string) (models.ListeningQuestion, error) {
	if len(row) < 9 {
		return models.ListeningQuestion{}, fmt.Errorf("expected 9 fields, got %d", len(row))
	}
	id, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
	if err != nil {
		return models.ListeningQuestion{}, fmt.Errorf("bad id %q: %v", row[0], err)
	}
	correct, err := strconv.Atoi(strings.TrimSpace(row[7]))
	if err != nil {
		return models.ListeningQuestion{}, fmt.Errorf("bad correct index %q: %v", row[7], err)
	}
	if correct < 0 || correct > 3 {
		return models.ListeningQuestion{}, fmt.Errorf("correct index %d out of range", correct)
	}
	q := models.ListeningQuestion{
		ID:           id,
		Script:       strings.TrimSpace(row[1]),
		Prompt:       strings.TrimSpace(row[2]),
		CorrectIndex: correct,
		Explanation:  strings.TrimSpace(row[8]),
	}
	for i := 0; i < 4; i++ {
		q.Options[i] = strings.TrimSpace(row[3+i])
	}
	if q.Script == "" || q.Prompt == "" {
		return models.ListeningQuestion{}, fmt.Errorf("empty script or prompt")
	}
	return q, nil
}

// readRows returns all rows of the file as string slices.
func readRows(config Config) ([][]string, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))
	if ext == ".csv" {
		return readCSV(config.FilePath)
	}
	return readExcel(config)
}

func readExcel(config Config) ([][]string, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // ragged rows are handled per row

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %v", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}
