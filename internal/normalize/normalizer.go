// Package normalize rewrites recognized bad categorical values to the
// canonical UNKNOWN sentinel. Matching is exact and case-sensitive so a
// legitimate value containing a sentinel as a substring is never
// rewritten, and fields absent from the rule set are never touched.
package normalize

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"trendcli/pkg/contracts/domain"
)

// Rules maps each designated field to the set of values rewritten to
// UNKNOWN on that field.
type Rules map[string]map[string]struct{}

// NewRules builds the rule set: shared applies to every designated
// field, perField adds field-specific sentinels. The UNKNOWN sentinel
// itself is always a member, which makes application idempotent.
func NewRules(fields []string, shared []string, perField map[string][]string) Rules {
	rules := make(Rules, len(fields))
	for _, field := range fields {
		bad := make(map[string]struct{}, len(shared)+len(perField[field])+1)
		for _, v := range shared {
			bad[v] = struct{}{}
		}
		for _, v := range perField[field] {
			bad[v] = struct{}{}
		}
		bad[domain.Unknown] = struct{}{}
		rules[field] = bad
	}
	return rules
}

// Fields returns the designated field names.
func (r Rules) Fields() []string {
	fields := make([]string, 0, len(r))
	for f := range r {
		fields = append(fields, f)
	}
	return fields
}

// Apply returns a canonical copy of rec: every designated field holds
// either its original value or UNKNOWN. Unmatched values and
// non-designated fields pass through unchanged. Fields are handled
// independently; there is no cross-field coupling.
func (r Rules) Apply(rec domain.RawRecord) domain.RawRecord {
	out := rec.Clone()
	for field, bad := range r {
		value, ok := out.Fields[field]
		if !ok {
			continue
		}
		if _, isBad := bad[value]; isBad {
			out.Fields[field] = domain.Unknown
		}
	}
	return out
}

// ApplyAll canonicalizes every row of table. Rows are independent, so
// the work fans out over a bounded errgroup; output order matches input
// order regardless of scheduling.
func ApplyAll(ctx context.Context, rules Rules, table *domain.Table) ([]domain.RawRecord, error) {
	out := make([]domain.RawRecord, len(table.Rows))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, rec := range table.Rows {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			out[i] = rules.Apply(rec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Default().InfoContext(ctx, "normalized records",
		slog.Int("records", len(out)),
		slog.Int("designated_fields", len(rules)))

	return out, nil
}
