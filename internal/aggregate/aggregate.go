// Package aggregate assembles the final generation result from reviewed
// drafts.
package aggregate

import (
	"fmt"
	"sort"
	"time"

	"github.com/abhisek/quizgenius/internal/question"
)

// Meta carries batch-level facts that flow into the result unchanged.
type Meta struct {
	Log           []question.AttemptRecord
	Elapsed       time.Duration
	Partial       bool
	PartialReason string
}

// Aggregate deduplicates and truncates reviewed drafts into a result. It
// never fails and is a pure function of its inputs.
func Aggregate(reviewed []question.Reviewed, req question.Request, meta Meta) question.Result {
	res := question.Result{
		Accepted:      []question.Reviewed{},
		Rejected:      []question.Rejection{},
		Requested:     map[question.Type]int{},
		Produced:      map[question.Type]int{},
		Elapsed:       meta.Elapsed,
		Log:           append([]question.AttemptRecord{}, meta.Log...),
		Partial:       meta.Partial,
		PartialReason: meta.PartialReason,
	}
	for t, n := range req.Counts {
		res.Requested[t] = n
	}
	for _, t := range question.Types() {
		res.Produced[t] = 0
	}

	var passed []question.Reviewed
	for _, r := range reviewed {
		if err := r.Outcome.Failure(); err != nil {
			res.Rejected = append(res.Rejected, question.Rejection{Reviewed: r, Reason: err.Error()})
			continue
		}
		passed = append(passed, r)
	}

	// Best first, so the first occurrence of a text is the one kept.
	sort.SliceStable(passed, func(i, j int) bool { return better(passed[i], passed[j]) })

	seen := map[string]question.Reviewed{}
	perType := map[question.Type][]question.Reviewed{}
	for _, r := range passed {
		key := question.NormalizeText(r.Draft.Text)
		if kept, dup := seen[key]; dup {
			res.Rejected = append(res.Rejected, question.Rejection{
				Reviewed: r,
				Reason: fmt.Sprintf("duplicate of a higher-ranked question from chunk %d (score %.2f)",
					kept.Draft.ChunkID, kept.Outcome.Score),
			})
			continue
		}
		seen[key] = r
		perType[r.Draft.Type] = append(perType[r.Draft.Type], r)
	}

	for _, t := range question.Types() {
		list := perType[t]
		limit := min(max(req.Counts[t], 0), len(list))
		res.Accepted = append(res.Accepted, list[:limit]...)
		res.Surplus = append(res.Surplus, list[limit:]...)
		res.Produced[t] = limit
	}

	sort.SliceStable(res.Accepted, func(i, j int) bool { return presentationLess(res.Accepted[i], res.Accepted[j]) })
	sort.SliceStable(res.Surplus, func(i, j int) bool { return presentationLess(res.Surplus[i], res.Surplus[j]) })
	sort.SliceStable(res.Rejected, func(i, j int) bool {
		return arrivalLess(res.Rejected[i].Draft, res.Rejected[j].Draft)
	})

	if total := req.TotalRequested(); total > 0 {
		res.SuccessRatio = min(1, float64(len(res.Accepted))/float64(total))
	}
	return res
}

// better ranks by score, then earlier chunk, then earlier arrival.
func better(a, b question.Reviewed) bool {
	if a.Outcome.Score != b.Outcome.Score {
		return a.Outcome.Score > b.Outcome.Score
	}
	return arrivalLess(a.Draft, b.Draft)
}

// presentationLess orders by chunk, then score, then arrival.
func presentationLess(a, b question.Reviewed) bool {
	if a.Draft.ChunkID != b.Draft.ChunkID {
		return a.Draft.ChunkID < b.Draft.ChunkID
	}
	if a.Outcome.Score != b.Outcome.Score {
		return a.Outcome.Score > b.Outcome.Score
	}
	return a.Draft.Seq < b.Draft.Seq
}

func arrivalLess(a, b question.Draft) bool {
	if a.ChunkID != b.ChunkID {
		return a.ChunkID < b.ChunkID
	}
	return a.Seq < b.Seq
}
