package reconcile_test

import (
	"fmt"
	"math/rand"
	"testing"

	"beryll-inventory/core/bmc"
	"beryll-inventory/feature/components/models"
	"beryll-inventory/feature/components/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func dbComp(id uint, typ models.ComponentType, slot, serial string) models.ServerComponent {
	c := models.ServerComponent{ID: id, ServerID: 1, ComponentType: typ, Name: string(typ), OriginSource: models.OriginBMC, Status: models.StatusOK}
	if slot != "" {
		c.Slot = strPtr(slot)
	}
	if serial != "" {
		c.SerialNumber = strPtr(serial)
	}
	return c
}

func liveComp(typ, slot, serial string) bmc.Component {
	return bmc.Component{Type: typ, Name: typ + " " + slot, Slot: slot, SerialNumber: serial, Status: bmc.StatusOK}
}

func TestMatchFirmwareMismatch(t *testing.T) {
	d := dbComp(1, models.TypeRAM, "DIMM-3", "A1")
	d.FirmwareVersion = strPtr("1.0")
	l := liveComp("RAM", "DIMM-3", "A1")
	l.FirmwareVersion = "2.0"

	res := reconcile.Match([]models.ServerComponent{d}, []bmc.Component{l})

	require.Len(t, res.Mismatches, 1)
	assert.Empty(t, res.Matched)
	assert.Empty(t, res.MissingInBMC)
	assert.Empty(t, res.NewInBMC)

	diffs := res.Mismatches[0].Differences
	require.Len(t, diffs, 1)
	assert.Equal(t, reconcile.FieldFirmwareVersion, diffs[0].Field)
	assert.Equal(t, "1.0", diffs[0].DB)
	assert.Equal(t, "2.0", diffs[0].BMC)
	assert.False(t, res.Mismatches[0].TouchesIdentity())
}

func TestMatchSerialFallback(t *testing.T) {
	d := dbComp(1, models.TypeSSD, "", "S1")
	l := liveComp("SSD", "Bay 4", "S1")

	res := reconcile.Match([]models.ServerComponent{d}, []bmc.Component{l})

	require.Len(t, res.Matched, 1)
	assert.Equal(t, uint(1), res.Matched[0].DBComponent.ID)
}

func TestMatchYadroSerial(t *testing.T) {
	d := dbComp(1, models.TypeNIC, "", "")
	d.SerialNumberYadro = strPtr("Y-7")
	l := liveComp("NIC", "", "")
	l.SerialNumberYadro = "Y-7"

	res := reconcile.Match([]models.ServerComponent{d}, []bmc.Component{l})
	assert.Len(t, res.Matched, 1)
}

func TestMatchNeverCrossesTypes(t *testing.T) {
	d := dbComp(1, models.TypeHDD, "Bay 1", "S1")
	l := liveComp("SSD", "Bay 1", "S1")

	res := reconcile.Match([]models.ServerComponent{d}, []bmc.Component{l})

	assert.Empty(t, res.Matched)
	assert.Empty(t, res.Mismatches)
	require.Len(t, res.MissingInBMC, 1)
	require.Len(t, res.NewInBMC, 1)
	assert.Equal(t, "not reported by BMC", res.MissingInBMC[0].Reason)
	assert.Equal(t, "not present in inventory", res.NewInBMC[0].Reason)
}

func TestMatchSlotWinsOverSerial(t *testing.T) {
	// Row 1 holds the slot, row 2 holds the serial the BMC now reports there.
	a := dbComp(1, models.TypeRAM, "DIMM-1", "OLD")
	b := dbComp(2, models.TypeRAM, "", "NEW")
	l := liveComp("RAM", "DIMM-1", "NEW")

	res := reconcile.Match([]models.ServerComponent{a, b}, []bmc.Component{l})

	require.Len(t, res.Mismatches, 1)
	assert.Equal(t, uint(1), res.Mismatches[0].DBComponent.ID)
	assert.True(t, res.Mismatches[0].TouchesIdentity())
	require.Len(t, res.MissingInBMC, 1)
	assert.Equal(t, uint(2), res.MissingInBMC[0].DBComponent.ID)
	assert.Empty(t, res.NewInBMC)
}

func TestMatchAmbiguousSlotsStayUnpaired(t *testing.T) {
	a := dbComp(1, models.TypeFan, "FAN", "")
	b := dbComp(2, models.TypeFan, "FAN", "")
	l := liveComp("FAN", "FAN", "")

	res := reconcile.Match([]models.ServerComponent{a, b}, []bmc.Component{l})

	assert.Empty(t, res.Matched)
	assert.Len(t, res.MissingInBMC, 2)
	assert.Len(t, res.NewInBMC, 1)
}

func TestMatchAmbiguousSerialStaysUnpaired(t *testing.T) {
	d := dbComp(1, models.TypeGPU, "", "G1")
	l1 := liveComp("GPU", "", "G1")
	l2 := liveComp("GPU", "", "G1")

	res := reconcile.Match([]models.ServerComponent{d}, []bmc.Component{l1, l2})

	assert.Empty(t, res.Matched)
	assert.Len(t, res.MissingInBMC, 1)
	assert.Len(t, res.NewInBMC, 2)
}

func TestMatchManualFlag(t *testing.T) {
	c := dbComp(1, models.TypeCable, "", "")
	c.OriginSource = models.OriginManual

	res := reconcile.Match([]models.ServerComponent{c}, nil)

	require.Len(t, res.MissingInBMC, 1)
	assert.True(t, res.MissingInBMC[0].IsManual)
	assert.NotNil(t, res.NewInBMC)
}

func TestMatchUnknownLiveTypeIsOther(t *testing.T) {
	d := dbComp(1, models.TypeOther, "X", "")
	l := liveComp("WIDGET", "X", "")

	res := reconcile.Match([]models.ServerComponent{d}, []bmc.Component{l})
	assert.Len(t, res.Matched, 1)
}

func TestDifferencesIgnoreMissingValues(t *testing.T) {
	d := dbComp(1, models.TypeCPU, "CPU0", "")
	d.Speed = new(int64)
	l := liveComp("CPU", "CPU0", "C9")
	l.Speed = 2400
	l.Manufacturer = "Intel"

	assert.Empty(t, reconcile.Differences(&d, &l))
}

func randomInputs(r *rand.Rand) ([]models.ServerComponent, []bmc.Component) {
	types := []models.ComponentType{models.TypeCPU, models.TypeRAM, models.TypeSSD, models.TypeCable}
	pick := func(n int, prefix string) string {
		if v := r.Intn(n + 2); v < n {
			return fmt.Sprintf("%s%d", prefix, v)
		}
		return ""
	}

	var dbs []models.ServerComponent
	for i := 0; i < r.Intn(12); i++ {
		c := dbComp(uint(i+1), types[r.Intn(len(types))], pick(4, "S"), pick(6, "N"))
		if r.Intn(3) == 0 {
			c.FirmwareVersion = strPtr(pick(2, "fw"))
		}
		dbs = append(dbs, c)
	}

	var lives []bmc.Component
	for i := 0; i < r.Intn(12); i++ {
		l := liveComp(string(types[r.Intn(len(types))]), pick(4, "S"), pick(6, "N"))
		l.FirmwareVersion = pick(2, "fw")
		lives = append(lives, l)
	}
	return dbs, lives
}

func TestMatchIsPartition(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for run := 0; run < 500; run++ {
		dbs, lives := randomInputs(r)
		res := reconcile.Match(dbs, lives)

		seenDB := make(map[uint]int)
		for _, m := range res.Matched {
			seenDB[m.DBComponent.ID]++
		}
		for _, m := range res.Mismatches {
			seenDB[m.DBComponent.ID]++
		}
		for _, m := range res.MissingInBMC {
			seenDB[m.DBComponent.ID]++
		}
		require.Len(t, seenDB, len(dbs), "run %d", run)
		for id, n := range seenDB {
			require.Equal(t, 1, n, "run %d component %d", run, id)
		}

		live := len(res.Matched) + len(res.Mismatches) + len(res.NewInBMC)
		require.Equal(t, len(lives), live, "run %d", run)
	}
}

func TestMatchIsDeterministic(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for run := 0; run < 100; run++ {
		dbs, lives := randomInputs(r)
		first := reconcile.Match(dbs, lives)

		shuffled := make([]bmc.Component, len(lives))
		copy(shuffled, lives)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		assert.Equal(t, first, reconcile.Match(dbs, shuffled), "run %d", run)
	}
}
