package reconcile

import (
	"sort"
	"strings"

	"beryll-inventory/core/bmc"
	"beryll-inventory/core/reconcile"
	"beryll-inventory/feature/components/models"
)

const (
	reasonNotReported = "not reported by BMC"
	reasonNotInDB     = "not present in inventory"
)

// Compared fields, in report order.
const (
	FieldSerialNumber      = "serialNumber"
	FieldSerialNumberYadro = "serialNumberYadro"
	FieldManufacturer      = "manufacturer"
	FieldModel             = "model"
	FieldPartNumber        = "partNumber"
	FieldFirmwareVersion   = "firmwareVersion"
	FieldCapacity          = "capacity"
	FieldSpeed             = "speed"
)

// MatchedItem is a pair with no differing field.
type MatchedItem struct {
	DBComponent  models.ServerComponent `json:"dbComponent"`
	BMCComponent bmc.Component          `json:"bmcComponent"`
}

// MissingItem is a persisted component the BMC did not report.
type MissingItem struct {
	DBComponent models.ServerComponent `json:"dbComponent"`
	IsManual    bool                   `json:"isManual"`
	Reason      string                 `json:"reason"`
}

// NewItem is a reported component with no persisted counterpart.
type NewItem struct {
	BMCComponent bmc.Component `json:"bmcComponent"`
	Reason       string        `json:"reason"`
}

// MismatchItem is a pair with at least one differing field.
type MismatchItem struct {
	DBComponent  models.ServerComponent `json:"dbComponent"`
	BMCComponent bmc.Component          `json:"bmcComponent"`
	Differences  []reconcile.Difference `json:"differences"`
}

// TouchesIdentity reports whether a serial differs.
func (m MismatchItem) TouchesIdentity() bool {
	return reconcile.Touches(m.Differences, FieldSerialNumber, FieldSerialNumberYadro)
}

// MatchResult partitions both inputs: every persisted and every reported
// component lands in exactly one list.
type MatchResult struct {
	Matched      []MatchedItem  `json:"matched"`
	MissingInBMC []MissingItem  `json:"missingInBmc"`
	NewInBMC     []NewItem      `json:"newInBmc"`
	Mismatches   []MismatchItem `json:"mismatches"`
}

// Match pairs persisted and reported components of one server. It has no side
// effects and returns the same result for the same inputs.
//
// Pairing happens inside a component type. Slots pair first, but only slots
// that occur once on each side. Remaining items pair on serialNumber or
// serialNumberYadro when the match is unique on both sides. Anything still
// unpaired is missing or new.
func Match(dbComponents []models.ServerComponent, bmcComponents []bmc.Component) *MatchResult {
	dbs := make([]models.ServerComponent, len(dbComponents))
	copy(dbs, dbComponents)
	sort.SliceStable(dbs, func(i, j int) bool { return dbLess(&dbs[i], &dbs[j]) })

	lives := make([]bmc.Component, len(bmcComponents))
	copy(lives, bmcComponents)
	sort.SliceStable(lives, func(i, j int) bool { return liveLess(&lives[i], &lives[j]) })

	dbBuckets := make(map[models.ComponentType][]int)
	liveBuckets := make(map[models.ComponentType][]int)
	var types []models.ComponentType
	seen := make(map[models.ComponentType]bool)
	for i := range dbs {
		t := dbs[i].ComponentType
		dbBuckets[t] = append(dbBuckets[t], i)
		if !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}
	for i := range lives {
		t := liveType(&lives[i])
		liveBuckets[t] = append(liveBuckets[t], i)
		if !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	res := &MatchResult{
		Matched:      []MatchedItem{},
		MissingInBMC: []MissingItem{},
		NewInBMC:     []NewItem{},
		Mismatches:   []MismatchItem{},
	}

	for _, t := range types {
		pairs, dbLeft, liveLeft := pairBucket(dbs, lives, dbBuckets[t], liveBuckets[t])

		for _, p := range pairs {
			d, l := dbs[p[0]], lives[p[1]]
			if diffs := Differences(&d, &l); len(diffs) > 0 {
				res.Mismatches = append(res.Mismatches, MismatchItem{DBComponent: d, BMCComponent: l, Differences: diffs})
			} else {
				res.Matched = append(res.Matched, MatchedItem{DBComponent: d, BMCComponent: l})
			}
		}
		for _, i := range dbLeft {
			res.MissingInBMC = append(res.MissingInBMC, MissingItem{
				DBComponent: dbs[i],
				IsManual:    dbs[i].IsManual(),
				Reason:      reasonNotReported,
			})
		}
		for _, i := range liveLeft {
			res.NewInBMC = append(res.NewInBMC, NewItem{BMCComponent: lives[i], Reason: reasonNotInDB})
		}
	}

	return res
}

// pairBucket returns index pairs {db, live} plus the unpaired indices of both sides.
func pairBucket(dbs []models.ServerComponent, lives []bmc.Component, dbIdx, liveIdx []int) ([][2]int, []int, []int) {
	var pairs [][2]int
	dbUsed := make(map[int]bool)
	liveUsed := make(map[int]bool)

	// slot pass
	dbSlots := make(map[string][]int)
	for _, i := range dbIdx {
		if s := norm(dbs[i].Slot); s != "" {
			dbSlots[s] = append(dbSlots[s], i)
		}
	}
	liveSlots := make(map[string][]int)
	for _, i := range liveIdx {
		if s := strings.TrimSpace(lives[i].Slot); s != "" {
			liveSlots[s] = append(liveSlots[s], i)
		}
	}
	for _, i := range dbIdx {
		s := norm(dbs[i].Slot)
		if s == "" || len(dbSlots[s]) != 1 || len(liveSlots[s]) != 1 {
			continue
		}
		j := liveSlots[s][0]
		pairs = append(pairs, [2]int{i, j})
		dbUsed[i], liveUsed[j] = true, true
	}

	// serial pass
	candidates := make(map[int][]int)
	reverse := make(map[int][]int)
	for _, i := range dbIdx {
		if dbUsed[i] {
			continue
		}
		for _, j := range liveIdx {
			if liveUsed[j] || !sameSerial(&dbs[i], &lives[j]) {
				continue
			}
			candidates[i] = append(candidates[i], j)
			reverse[j] = append(reverse[j], i)
		}
	}
	for _, i := range dbIdx {
		c := candidates[i]
		if len(c) != 1 || len(reverse[c[0]]) != 1 {
			continue
		}
		pairs = append(pairs, [2]int{i, c[0]})
		dbUsed[i], liveUsed[c[0]] = true, true
	}

	sort.SliceStable(pairs, func(a, b int) bool { return dbLess(&dbs[pairs[a][0]], &dbs[pairs[b][0]]) })

	var dbLeft, liveLeft []int
	for _, i := range dbIdx {
		if !dbUsed[i] {
			dbLeft = append(dbLeft, i)
		}
	}
	for _, j := range liveIdx {
		if !liveUsed[j] {
			liveLeft = append(liveLeft, j)
		}
	}
	return pairs, dbLeft, liveLeft
}

func sameSerial(d *models.ServerComponent, l *bmc.Component) bool {
	if sn := norm(d.SerialNumber); sn != "" && sn == strings.TrimSpace(l.SerialNumber) {
		return true
	}
	if sy := norm(d.SerialNumberYadro); sy != "" && sy == strings.TrimSpace(l.SerialNumberYadro) {
		return true
	}
	return false
}

// Differences compares the identity and descriptive fields of a pair. A field
// missing on either side is not a difference.
func Differences(d *models.ServerComponent, l *bmc.Component) []reconcile.Difference {
	var out []reconcile.Difference
	add := func(diff reconcile.Difference, ok bool) {
		if ok {
			out = append(out, diff)
		}
	}

	add(reconcile.DiffString(FieldSerialNumber, d.SerialNumber, &l.SerialNumber))
	add(reconcile.DiffString(FieldSerialNumberYadro, d.SerialNumberYadro, &l.SerialNumberYadro))
	add(reconcile.DiffString(FieldManufacturer, d.Manufacturer, &l.Manufacturer))
	add(reconcile.DiffString(FieldModel, d.Model, &l.Model))
	add(reconcile.DiffString(FieldPartNumber, d.PartNumber, &l.PartNumber))
	add(reconcile.DiffString(FieldFirmwareVersion, d.FirmwareVersion, &l.FirmwareVersion))
	add(reconcile.DiffInt64(FieldCapacity, d.Capacity, &l.Capacity))
	add(reconcile.DiffInt64(FieldSpeed, d.Speed, &l.Speed))

	return out
}

func liveType(l *bmc.Component) models.ComponentType {
	if t, ok := models.ParseComponentType(l.Type); ok {
		return t
	}
	return models.TypeOther
}

func norm(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func dbLess(a, b *models.ServerComponent) bool {
	if a.ComponentType != b.ComponentType {
		return a.ComponentType < b.ComponentType
	}
	if sa, sb := norm(a.Slot), norm(b.Slot); sa != sb {
		return sa < sb
	}
	if sa, sb := norm(a.SerialNumber), norm(b.SerialNumber); sa != sb {
		return sa < sb
	}
	return a.ID < b.ID
}

func liveLess(a, b *bmc.Component) bool {
	if ta, tb := liveType(a), liveType(b); ta != tb {
		return ta < tb
	}
	if a.Slot != b.Slot {
		return a.Slot < b.Slot
	}
	if a.SerialNumber != b.SerialNumber {
		return a.SerialNumber < b.SerialNumber
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.FirmwareVersion < b.FirmwareVersion
}
