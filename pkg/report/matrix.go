package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/ipc"
	"github.com/apache/arrow/go/v13/arrow/memory"

	"github.com/XiaoConstantine/mosa-go/pkg/core"
	"github.com/XiaoConstantine/mosa-go/pkg/errors"
	"github.com/XiaoConstantine/mosa-go/pkg/logging"
)

// FitnessMatrix renders a generation snapshot as an Arrow record: one row
// per population member, a string column for the candidate id and one
// float64 column per goal in the inventory. Distances for goals a candidate
// was never evaluated against are null.
//
// As an Observer it writes one Arrow IPC file per generation into a
// directory, for downstream columnar analysis of the fitness landscape.
type FitnessMatrix struct {
	dir    string
	logger *logging.Logger
}

// NewFitnessMatrix creates the exporter; dir is created if missing.
func NewFitnessMatrix(dir string) (*FitnessMatrix, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "failed to create matrix directory")
	}
	return &FitnessMatrix{dir: dir, logger: logging.GetLogger()}, nil
}

// OnGeneration writes the snapshot's matrix. Export failures are logged and
// dropped; reporting must not stop a search.
func (m *FitnessMatrix) OnGeneration(ctx context.Context, snap *core.GenerationSnapshot) {
	path := filepath.Join(m.dir, fmt.Sprintf("fitness_gen_%05d.arrow", snap.Generation))
	if err := WriteMatrix(path, snap); err != nil {
		m.logger.Warn(ctx, "failed to export fitness matrix for generation %d: %v", snap.Generation, err)
	}
}

// WriteMatrix writes one snapshot as an Arrow IPC file.
func WriteMatrix(path string, snap *core.GenerationSnapshot) error {
	record := BuildRecord(snap)
	defer record.Release()

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.InvalidInput, "failed to create matrix file")
	}
	defer f.Close()

	w, err := ipc.NewFileWriter(f, ipc.WithSchema(record.Schema()))
	if err != nil {
		return errors.Wrap(err, errors.Unknown, "failed to create arrow writer")
	}
	if err := w.Write(record); err != nil {
		w.Close()
		return errors.Wrap(err, errors.Unknown, "failed to write arrow record")
	}
	return w.Close()
}

// BuildRecord assembles the Arrow record for a snapshot. The caller owns the
// returned record and must Release it.
func BuildRecord(snap *core.GenerationSnapshot) arrow.Record {
	goalIDs := matrixGoals(snap)

	fields := make([]arrow.Field, 0, len(goalIDs)+1)
	fields = append(fields, arrow.Field{Name: "candidate_id", Type: arrow.BinaryTypes.String})
	for _, goalID := range goalIDs {
		fields = append(fields, arrow.Field{Name: goalID, Type: arrow.PrimitiveTypes.Float64, Nullable: true})
	}
	schema := arrow.NewSchema(fields, nil)

	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	idBuilder := builder.Field(0).(*array.StringBuilder)
	for _, candidateID := range snap.Population {
		idBuilder.Append(candidateID)
		fitness := snap.Fitness[candidateID]
		for i, goalID := range goalIDs {
			col := builder.Field(i + 1).(*array.Float64Builder)
			if d, ok := fitness[goalID]; ok {
				col.Append(d)
			} else {
				col.AppendNull()
			}
		}
	}

	return builder.NewRecord()
}

// matrixGoals returns the full goal inventory visible in the snapshot,
// sorted, so every generation's matrix has the same column layout.
func matrixGoals(snap *core.GenerationSnapshot) []string {
	ids := make([]string, 0, len(snap.Covered)+len(snap.Uncovered))
	ids = append(ids, snap.Covered...)
	ids = append(ids, snap.Uncovered...)
	sort.Strings(ids)
	return ids
}
