package gym

import (
	"math"
	"time"
)

// PlanStats summarizes plan performance.
type PlanStats struct {
	ActivePlans           int                `json:"activePlans"`
	TotalSubscribers      int                `json:"totalSubscribers"`
	MonthlyRevenue        float64            `json:"monthlyRevenue"`
	TopPerformingPlan     string             `json:"topPerformingPlan"`
	LeastPerformingPlan   string             `json:"leastPerformingPlan"`
	ExpiringSubscriptions int                `json:"expiringSubscriptions"`
	SubscriberCounts      map[string]int     `json:"subscriberCounts"`
	Distribution          []PlanDistribution `json:"distribution"`
}

// PlanDistribution is a plan's share of the member base.
type PlanDistribution struct {
	PlanID   string  `json:"_id,omitempty"`
	PlanName string  `json:"planName"`
	Count    int     `json:"count"`
	Percent  float64 `json:"percent,omitempty"`
}

// ComputePlanStats derives plan performance from the plan list and members.
// Subscriber counts include members of any status; revenue only counts active
// members whose populated plan carries a price. Expiring subscriptions use the
// midnight-normalized window [today, today+DefaultExpiryWindowDays].
func ComputePlanStats(plans []Plan, members []Member, today time.Time) PlanStats {
	return ComputePlanStatsWindow(plans, members, today, DefaultExpiryWindowDays)
}

// ComputePlanStatsWindow is ComputePlanStats with a configurable expiry window.
func ComputePlanStatsWindow(plans []Plan, members []Member, today time.Time, windowDays int) PlanStats {
	stats := PlanStats{
		TopPerformingPlan:   NotAvailable,
		LeastPerformingPlan: NotAvailable,
		SubscriberCounts:    make(map[string]int, len(plans)),
	}
	for _, plan := range plans {
		if plan.IsActive {
			stats.ActivePlans++
		}
	}

	for _, member := range members {
		if id, ok := member.CurrentPlan.ID(); ok {
			stats.SubscriberCounts[id]++
		}
		if member.PlanEndDate != nil && IsExpiringSoonAt(*member.PlanEndDate, today, windowDays) {
			stats.ExpiringSubscriptions++
		}
		if !member.IsActive() {
			continue
		}
		stats.TotalSubscribers++
		if plan, ok := member.CurrentPlan.Doc(); ok && plan.Price != 0 {
			stats.MonthlyRevenue += plan.Price
		}
	}

	maxCount, minCount := -1, math.MaxInt
	stats.Distribution = make([]PlanDistribution, 0, len(plans))
	for _, plan := range plans {
		count := stats.SubscriberCounts[plan.ID]
		if count > maxCount {
			maxCount = count
			stats.TopPerformingPlan = plan.PlanName
		}
		if count < minCount {
			minCount = count
			stats.LeastPerformingPlan = plan.PlanName
		}
		entry := PlanDistribution{PlanID: plan.ID, PlanName: plan.PlanName, Count: count}
		if len(members) > 0 {
			entry.Percent = roundTo(float64(count)/float64(len(members))*100, 1)
		}
		stats.Distribution = append(stats.Distribution, entry)
	}
	return stats
}

func roundTo(value float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(value*scale) / scale
}
