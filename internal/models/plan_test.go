package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlanHasAccess(t *testing.T) {
	assert.True(t, PlanFamily.HasAccess(PlanPremium))
	assert.True(t, PlanPremium.HasAccess(PlanPremium))
	assert.False(t, PlanFree.HasAccess(PlanPremium))

	assert.True(t, PlanFamily.HasAccess(PlanFamily))
	assert.False(t, PlanPremium.HasAccess(PlanFamily))
	assert.True(t, PlanFree.HasAccess(PlanFree))
	assert.True(t, PlanFamily.HasAccess(PlanFree))
}

func TestParsePlan(t *testing.T) {
	for _, valid := range []string{"FREE", "PREMIUM", "FAMILY"} {
		plan, err := ParsePlan(valid)
		assert.NoError(t, err)
		assert.True(t, plan.Valid())
	}

	for _, invalid := range []string{"", "free", "Premium", "GOLD"} {
		_, err := ParsePlan(invalid)
		assert.Error(t, err, "input %q", invalid)
	}
}

func TestPlanPaid(t *testing.T) {
	assert.False(t, PlanFree.Paid())
	assert.True(t, PlanPremium.Paid())
	assert.True(t, PlanFamily.Paid())
}

func TestBillingCyclePeriodDuration(t *testing.T) {
	assert.Equal(t, 30*24*time.Hour, BillingMonthly.PeriodDuration())
	assert.Equal(t, 365*24*time.Hour, BillingYearly.PeriodDuration())
}

func TestSubscriptionEffectivePlan(t *testing.T) {
	var missing *Subscription
	assert.Equal(t, PlanFree, missing.EffectivePlan())

	canceled := &Subscription{Plan: PlanFamily, Status: SubscriptionCanceled}
	assert.Equal(t, PlanFree, canceled.EffectivePlan())

	active := &Subscription{Plan: PlanPremium, Status: SubscriptionActive}
	assert.Equal(t, PlanPremium, active.EffectivePlan())
}
