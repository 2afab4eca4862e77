package reconcile

import (
	"fmt"
	"strings"

	"beryll-inventory/core/bmc"
	"beryll-inventory/core/reconcile"
	"beryll-inventory/feature/components/models"
)

const (
	reasonDiscovered = "discovered by BMC"
	reasonSynced     = "synchronized with BMC"
	reasonManual     = "manual component"
)

// change is the payload of a plan action.
type change struct {
	Current *models.ServerComponent
	Live    *bmc.Component
	Diffs   []reconcile.Difference
	Flag    models.DiscrepancyReason
}

// buildPlan turns a classification into the mutations of mode.
// Compare has no plan.
func buildPlan(mode reconcile.Mode, res *MatchResult) *reconcile.Plan[change] {
	switch mode {
	case reconcile.ModeForce:
		return forcePlan(res)
	case reconcile.ModeMerge:
		return mergePlan(res)
	default:
		return &reconcile.Plan[change]{}
	}
}

// forcePlan mirrors the BMC. Manual components are never deleted.
func forcePlan(res *MatchResult) *reconcile.Plan[change] {
	plan := &reconcile.Plan[change]{}

	for i := range res.MissingInBMC {
		m := &res.MissingInBMC[i]
		if m.IsManual {
			plan.Add(reconcile.Action[change]{Type: reconcile.ActionPreserve, Key: dbKey(&m.DBComponent), Reason: reasonManual, Item: change{Current: &m.DBComponent}})
			continue
		}
		plan.Add(reconcile.Action[change]{Type: reconcile.ActionDelete, Key: dbKey(&m.DBComponent), Reason: reasonNotReported, Item: change{Current: &m.DBComponent}})
	}

	addInserts(plan, res)

	for i := range res.Mismatches {
		mm := &res.Mismatches[i]
		plan.Add(reconcile.Action[change]{
			Type:   reconcile.ActionUpdate,
			Key:    dbKey(&mm.DBComponent),
			Reason: reasonSynced,
			Fields: reconcile.Fields(mm.Differences),
			Item:   change{Current: &mm.DBComponent, Live: &mm.BMCComponent, Diffs: mm.Differences},
		})
		clearStaleFlag(plan, &mm.DBComponent)
	}

	for i := range res.Matched {
		clearStaleFlag(plan, &res.Matched[i].DBComponent)
	}

	return plan
}

// mergePlan adds and updates conservatively. Missing components and serial
// changes are flagged instead of applied.
func mergePlan(res *MatchResult) *reconcile.Plan[change] {
	plan := &reconcile.Plan[change]{}

	for i := range res.MissingInBMC {
		m := &res.MissingInBMC[i]
		reason := models.ReasonRemovedFromBMC
		if m.IsManual {
			reason = models.ReasonNotFoundInBMC
		}
		plan.Add(reconcile.Action[change]{Type: reconcile.ActionPreserve, Key: dbKey(&m.DBComponent), Reason: reasonNotReported, Item: change{Current: &m.DBComponent}})
		flag(plan, &m.DBComponent, reason)
	}

	addInserts(plan, res)

	for i := range res.Mismatches {
		mm := &res.Mismatches[i]
		if mm.TouchesIdentity() {
			flag(plan, &mm.DBComponent, models.ReasonSerialChanged)
			continue
		}
		plan.Add(reconcile.Action[change]{
			Type:   reconcile.ActionUpdate,
			Key:    dbKey(&mm.DBComponent),
			Reason: reasonSynced,
			Fields: reconcile.Fields(mm.Differences),
			Item:   change{Current: &mm.DBComponent, Live: &mm.BMCComponent, Diffs: mm.Differences},
		})
		clearStaleFlag(plan, &mm.DBComponent)
	}

	for i := range res.Matched {
		clearStaleFlag(plan, &res.Matched[i].DBComponent)
	}

	return plan
}

func addInserts(plan *reconcile.Plan[change], res *MatchResult) {
	for i := range res.NewInBMC {
		n := &res.NewInBMC[i]
		plan.Add(reconcile.Action[change]{Type: reconcile.ActionInsert, Key: liveKey(&n.BMCComponent), Reason: reasonDiscovered, Item: change{Live: &n.BMCComponent}})
	}
}

// flag adds a flag action unless the component already carries that reason.
func flag(plan *reconcile.Plan[change], c *models.ServerComponent, reason models.DiscrepancyReason) {
	if c.BMCDiscrepancy && c.BMCDiscrepancyReason != nil && *c.BMCDiscrepancyReason == reason {
		return
	}
	plan.Add(reconcile.Action[change]{Type: reconcile.ActionFlag, Key: dbKey(c), Reason: string(reason), Item: change{Current: c, Flag: reason}})
}

func clearStaleFlag(plan *reconcile.Plan[change], c *models.ServerComponent) {
	if !c.BMCDiscrepancy {
		return
	}
	plan.Add(reconcile.Action[change]{Type: reconcile.ActionClearFlag, Key: dbKey(c), Reason: "confirmed by BMC", Item: change{Current: c}})
}

func dbKey(c *models.ServerComponent) string {
	return fmt.Sprintf("component %d", c.ID)
}

func liveKey(l *bmc.Component) string {
	id := l.Slot
	if id == "" {
		id = l.SerialNumber
	}
	if id == "" {
		id = l.Name
	}
	return strings.TrimSpace(l.Type + " " + id)
}

func identityReason(diffs []reconcile.Difference) string {
	var parts []string
	for _, d := range diffs {
		if d.Field == FieldSerialNumber || d.Field == FieldSerialNumberYadro {
			parts = append(parts, fmt.Sprintf("%s changed from %v to %v", d.Field, d.DB, d.BMC))
		}
	}
	return strings.Join(parts, "; ")
}
