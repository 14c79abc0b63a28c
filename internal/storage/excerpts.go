package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"math"
	"sort"
	"strings"

	"github.com/landover-agents/server/internal/agent/model"
	errx "github.com/landover-agents/server/internal/core/error"
)

// InsertExcerpts loads narrative chunks, encoding embeddings as float32
// little-endian blobs.
func (r *Repository) InsertExcerpts(ctx context.Context, excerpts []model.Excerpt) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errx.WrapStore(err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO excerpts (fiscal_year, department, excerpt, embedding) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return errx.WrapStore(err)
	}
	defer stmt.Close()

	for _, e := range excerpts {
		var year, department, blob any
		if e.FiscalYear != 0 {
			year = int(e.FiscalYear)
		}
		if e.Department != "" {
			department = e.Department
		}
		if len(e.Embedding) > 0 {
			blob = encodeVector(e.Embedding)
		}
		if _, err := stmt.ExecContext(ctx, year, department, e.Text, blob); err != nil {
			return errx.WrapStore(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return errx.WrapStore(err)
	}
	return nil
}

// ExcerptCount reports how many excerpts are loaded, for seed-once startup.
func (r *Repository) ExcerptCount(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM excerpts`).Scan(&n); err != nil {
		return 0, errx.WrapStore(err)
	}
	return n, nil
}

// SearchByEmbedding ranks stored excerpts by cosine similarity against the
// query vector. The corpus is small enough to scan in full.
func (r *Repository) SearchByEmbedding(ctx context.Context, vec []float64, k int) ([]model.Evidence, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT fiscal_year, department, excerpt, embedding FROM excerpts WHERE embedding IS NOT NULL`)
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	defer rows.Close()

	type scored struct {
		ev    model.Evidence
		score float64
	}
	var hits []scored
	for rows.Next() {
		var year sql.NullInt64
		var department sql.NullString
		var text string
		var blob []byte
		if err := rows.Scan(&year, &department, &text, &blob); err != nil {
			return nil, errx.WrapStore(err)
		}
		score := cosineSimilarity(vec, decodeVector(blob))
		if score <= 0 {
			continue
		}
		ev := model.Evidence{
			Category: department.String,
			Excerpt:  text,
			Source:   "excerpts",
		}
		if year.Valid {
			ev.FiscalYear = model.FiscalYear(year.Int64).Label()
		}
		hits = append(hits, scored{ev: ev, score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, errx.WrapStore(err)
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	out := make([]model.Evidence, len(hits))
	for i, h := range hits {
		out[i] = h.ev
	}
	return out, nil
}

// SearchByKeywords matches excerpts on explicit year/department filters, or
// on LIKE matches of the question tokens when no filters were extracted.
func (r *Repository) SearchByKeywords(ctx context.Context, year *model.FiscalYear, department string, tokens []string, k int) ([]model.Evidence, error) {
	var where []string
	var args []any
	if year != nil {
		where = append(where, "fiscal_year = ?")
		args = append(args, int(*year))
	}
	if department != "" {
		where = append(where, "UPPER(department) = UPPER(?)")
		args = append(args, department)
	}
	if len(where) == 0 {
		if len(tokens) == 0 {
			return nil, nil
		}
		for _, tok := range tokens {
			where = append(where, "LOWER(excerpt) LIKE '%' || LOWER(?) || '%'")
			args = append(args, tok)
		}
	}
	if k <= 0 {
		k = 5
	}
	args = append(args, k)

	rows, err := r.db.QueryContext(ctx,
		`SELECT fiscal_year, department, excerpt FROM excerpts WHERE `+
			strings.Join(where, " AND ")+` LIMIT ?`, args...)
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	defer rows.Close()

	var out []model.Evidence
	for rows.Next() {
		var y sql.NullInt64
		var dept sql.NullString
		var text string
		if err := rows.Scan(&y, &dept, &text); err != nil {
			return nil, errx.WrapStore(err)
		}
		ev := model.Evidence{
			Category: dept.String,
			Excerpt:  text,
			Source:   "excerpts",
		}
		if y.Valid {
			ev.FiscalYear = model.FiscalYear(y.Int64).Label()
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, errx.WrapStore(err)
	}
	return out, nil
}

// encodeVector packs a vector as float32 little-endian bytes.
func encodeVector(vec []float64) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(float32(v)))
	}
	return buf
}

// decodeVector unpacks float32 little-endian bytes back to a vector.
func decodeVector(blob []byte) []float64 {
	n := len(blob) / 4
	vec := make([]float64, n)
	for i := 0; i < n; i++ {
		vec[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:])))
	}
	return vec
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
