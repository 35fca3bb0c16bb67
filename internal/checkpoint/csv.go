package checkpoint

import (
	"os"
	"sort"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/reva-ai/extract-cli/internal/model"
)

// csvRow is the on-disk shape of one result. The file stays a plain CSV so
// an operator can inspect progress mid-run with any spreadsheet tool.
type csvRow struct {
	RecordID string `csv:"record_id"`
	Status   string `csv:"status"`
	Source   string `csv:"source"`
	Abstract string `csv:"abstract"`
	Keywords string `csv:"keywords"`
	Error    string `csv:"error"`
}

// CSVStore keeps the checkpoint in a single CSV file, replaced atomically
// on every flush via write-temp-then-rename.
type CSVStore struct {
	path  string
	state *State
}

// NewCSVStore creates a store backed by the CSV file at path. The file need
// not exist yet.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path, state: NewState()}
}

func (s *CSVStore) Load() *State {
	s.state = NewState()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			zap.L().Warn("checkpoint: unreadable, starting fresh",
				zap.String("path", s.path),
				zap.Error(err),
			)
		}
		return s.state
	}

	var rows []csvRow
	if err := csvutil.Unmarshal(data, &rows); err != nil {
		zap.L().Warn("checkpoint: corrupt, starting fresh",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return s.state
	}

	for _, row := range rows {
		s.state.Results[row.RecordID] = model.ExtractionResult{
			RecordID: row.RecordID,
			Status:   model.Status(row.Status),
			Source:   model.Source(row.Source),
			Abstract: row.Abstract,
			Keywords: model.SplitKeywords(row.Keywords),
			Error:    model.ErrorKind(row.Error),
		}
	}
	return s.state
}

func (s *CSVStore) Record(result model.ExtractionResult) {
	s.state.Results[result.RecordID] = result
}

// Flush writes the full view to <path>.tmp and renames it over the
// checkpoint, so a crash mid-write cannot corrupt the previous artifact.
func (s *CSVStore) Flush() error {
	rows := make([]csvRow, 0, len(s.state.Results))
	for _, r := range s.state.Results {
		rows = append(rows, csvRow{
			RecordID: r.RecordID,
			Status:   string(r.Status),
			Source:   string(r.Source),
			Abstract: r.Abstract,
			Keywords: model.JoinKeywords(r.Keywords),
			Error:    string(r.Error),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].RecordID < rows[j].RecordID })

	data, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrap(err, "checkpoint: encode csv")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return eris.Wrap(err, "checkpoint: write temp file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return eris.Wrap(err, "checkpoint: replace file")
	}
	return nil
}

func (s *CSVStore) Close() error { return nil }
