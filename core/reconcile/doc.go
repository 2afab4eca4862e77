// Package reconcile provides the building blocks shared by reconciliation engines:
// policy modes, typed action plans and their ordered application, field-level
// difference helpers, a keyed try-lock and a TTL cache of flagged records.
//
// # Plans
//
// An engine first turns its classification into a Plan of typed actions and only
// then applies it through a Mutator. Planning is pure, so the same plan can be
// printed (dry run), applied, or asserted in tests.
//
//	var plan reconcile.Plan[Item]
//	plan.Add(reconcile.Action[Item]{Type: reconcile.ActionInsert, Key: "cpu/0"})
//	executed, err := reconcile.ApplyPlan(ctx, &plan, mutator)
//
// ApplyPlan runs deletes first, then updates (after an optional PrepareUpdates
// hook), inserts and flag changes, so values released by one record can be taken
// by another in the same run.
//
// # Exclusivity
//
// Locker hands out at most one holder per key and never blocks: a second caller
// gets ok == false and is expected to report contention instead of queueing.
package reconcile
