package cart

// MergeOpKind discriminates the two operations a merge plan can contain
type MergeOpKind string

const (
	// MergeOpUpdate bumps an existing remote line to the combined quantity
	MergeOpUpdate MergeOpKind = "update"
	// MergeOpInsert copies a guest line into the remote store
	MergeOpInsert MergeOpKind = "insert"
)

// MergeOp is one step of a guest-to-authenticated cart reconciliation
type MergeOp struct {
	Kind MergeOpKind
	// Guest is the guest line driving this op
	Guest LineItem
	// Remote is the matching remote line for MergeOpUpdate, zero otherwise
	Remote LineItem
	// Quantity is the target quantity after the op
	Quantity int
}

// PlanMerge computes the reconciliation of a guest cart into a remote cart.
// Matching is by variant identity; conflicts are resolved by quantity
// summation, so the plan never fails. Remote lines without a guest
// counterpart are untouched and do not appear in the plan.
func PlanMerge(guest, remote []LineItem) []MergeOp {
	byVariant := make(map[VariantKey]*LineItem, len(remote))
	for i := range remote {
		byVariant[remote[i].Variant()] = &remote[i]
	}

	// A well-formed guest cart has one line per variant, but a corrupted
	// local store must not produce duplicate inserts: fold first.
	folded := foldByVariant(guest)

	ops := make([]MergeOp, 0, len(folded))
	for i := range folded {
		g := folded[i]
		if r, ok := byVariant[g.Variant()]; ok {
			ops = append(ops, MergeOp{
				Kind:     MergeOpUpdate,
				Guest:    g,
				Remote:   *r,
				Quantity: r.Quantity + g.Quantity,
			})
			continue
		}
		ops = append(ops, MergeOp{
			Kind:     MergeOpInsert,
			Guest:    g,
			Quantity: g.Quantity,
		})
	}

	return ops
}

// foldByVariant collapses duplicate variants by summing quantities,
// keeping first-seen order and the first line's snapshot fields
func foldByVariant(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	index := make(map[VariantKey]int, len(items))
	for i := range items {
		key := items[i].Variant()
		if at, ok := index[key]; ok {
			out[at].Quantity += items[i].Quantity
			continue
		}
		index[key] = len(out)
		out = append(out, items[i])
	}
	return out
}
