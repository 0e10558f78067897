package dossier

import "sort"

// Positioned is an element of a per-procedure ordered list.
type Positioned interface {
	Position() int
	SetPosition(pos int)
}

// OrderedFields returns the procedure's fields sorted by order position.
// Fields sharing a position keep their declaration order.
func OrderedFields(p Procedure) []FieldDef {
	out := make([]FieldDef, len(p.Fields))
	copy(out, p.Fields)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func OrderedPieceTypes(p Procedure) []PieceTypeDef {
	out := make([]PieceTypeDef, len(p.PieceTypes))
	copy(out, p.PieceTypes)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// ReorderAdjacent swaps the element at index with the one right after it and
// rewrites both positions to match their new slots. It returns false without
// touching the list when there is no element after index.
func ReorderAdjacent[T Positioned](list []T, index int) bool {
	if index < 0 {
		return false
	}
	if index >= len(list)-1 {
		return false
	}
	if len(list) < 2 {
		return false
	}

	list[index], list[index+1] = list[index+1], list[index]
	list[index].SetPosition(index)
	list[index+1].SetPosition(index + 1)

	return true
}

// MaterializeChamps builds one empty value slot per field of the procedure,
// in field order.
func MaterializeChamps(p Procedure) []ChampValue {
	fields := OrderedFields(p)
	if len(fields) == 0 {
		return nil
	}

	champs := make([]ChampValue, 0, len(fields))
	for _, f := range fields {
		champs = append(champs, ChampValue{FieldID: f.ID})
	}
	return champs
}
