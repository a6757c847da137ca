package insights

import (
	"fmt"
	"strings"
)

// analyzer inspects a snapshot and returns at most one insight.
type analyzer func(g *Generator, s Snapshot) *Insight

// peakSlot is an entry of the fixed next-day peak table.
type peakSlot struct {
	window      string
	startMinute int // minutes after midnight
	probability float64
	reason      string
}

var peakSlots = []peakSlot{
	{window: "08:00-09:30", startMinute: 8 * 60, probability: 0.92, reason: "commuters arrive together"},
	{window: "11:30-13:00", startMinute: 11*60 + 30, probability: 0.68, reason: "nearby office staff go out for lunch"},
	{window: "17:30-19:00", startMinute: 17*60 + 30, probability: 0.95, reason: "evening commute and shopping traffic"},
}

const (
	utilizationTarget     = 0.7
	revenuePerFreeSpot    = 8.0
	revenueUpliftFactor   = 1.25
	revenueGapThreshold   = 0.15
	peakRevenueFactor     = 1.2
	shortTermRatioTrigger = 0.5
	longDurationTrigger   = 4.0
	quickTurnoverShare    = 0.6
	areaPriceMultiplier   = 0.8
	defaultAvgDuration    = 2.5
	defaultShortTermRatio = 0.4
)

func analyzeUtilization(g *Generator, s Snapshot) *Insight {
	for _, a := range s.Areas {
		rate, _ := a.Rate()
		if rate >= g.utilizationThreshold {
			continue
		}
		free := a.TotalSpots - a.OccupiedSpots
		return &Insight{
			Kind:        KindUtilization,
			Type:        TypeWarning,
			Priority:    PriorityHigh,
			Title:       "Low space utilization",
			Description: fmt.Sprintf("%s is only %.1f%% occupied and capacity is going unused", a.Name, rate*100),
			Metrics: map[string]float64{
				"currentRate":      rate,
				"targetRate":       utilizationTarget,
				"availableSpots":   float64(free),
				"potentialRevenue": float64(free) * revenuePerFreeSpot,
			},
			Suggestions: []string{
				"Lower prices in this area by 20% to attract drivers",
				"Feature this area as a preferred choice on the app home screen",
				"Issue area-specific coupons valid for 7 days",
				"Adjust navigation guidance to divert part of the traffic here",
			},
			ExpectedImpact: "Utilization expected to rise by 25-35%",
			Action: Action{
				Code:       ActionReduceAreaPrice,
				Target:     a.ID,
				Multiplier: areaPriceMultiplier,
			},
		}
	}
	return nil
}

func analyzeRevenue(g *Generator, s Snapshot) *Insight {
	current := g.dailyRevenue(s)
	potential := current * revenueUpliftFactor
	gap := potential - current
	if gap <= current*revenueGapThreshold {
		return nil
	}

	return &Insight{
		Kind:        KindRevenue,
		Type:        TypeSuccess,
		Priority:    PriorityHigh,
		Title:       "Revenue optimization opportunity",
		Description: fmt.Sprintf("Dynamic pricing could add about %.1fk per day", gap/1000),
		Metrics: map[string]float64{
			"currentRevenue":   current,
			"potentialRevenue": potential,
			"increaseAmount":   gap,
			"increaseRate":     gap / current,
		},
		Suggestions: []string{
			"Raise prices 30% automatically during peaks (08-10, 17-19)",
			"Cut prices 30% overnight (22-06) to attract overnight parking",
			"Offer progressive discounts for stays over 6 hours",
			"Monitor occupancy in real time and adjust prices continuously",
		},
		ExpectedImpact: fmt.Sprintf("About %.0f more per month and %.0f per year", gap*30, gap*365),
		Action:         Action{Code: ActionEnableDynamicPricing},
	}
}

func analyzePeak(g *Generator, s Snapshot) *Insight {
	slot := nextPeak(s.At.Hour()*60 + s.At.Minute())
	return &Insight{
		Kind:        KindPeak,
		Type:        TypeInfo,
		Priority:    PriorityMedium,
		Title:       "Peak forecast",
		Description: fmt.Sprintf("Heavy traffic expected at %s (%s)", slot.window, slot.reason),
		Metrics: map[string]float64{
			"probability":      slot.probability,
			"predictedRevenue": g.dailyRevenue(s) * peakRevenueFactor,
		},
		Suggestions: []string{
			fmt.Sprintf("Start dynamic price increases one hour before %s", slot.window),
			"Push off-peak parking suggestions with incentives to app users",
			"Open overflow areas in advance for about 100 temporary spots",
			"Add on-site staff to keep entrances and exits moving",
		},
		ExpectedImpact: "Relieves about 30% of peak pressure",
		Action: Action{
			Code:   ActionSchedulePeakPreparation,
			Target: slot.window,
		},
	}
}

// nextPeak returns the first slot starting after minute of the day, wrapping
// to the morning slot of the next day.
func nextPeak(minute int) peakSlot {
	for _, slot := range peakSlots {
		if slot.startMinute > minute {
			return slot
		}
	}
	return peakSlots[0]
}

func analyzeBehavior(_ *Generator, s Snapshot) *Insight {
	avg := s.AvgDuration
	if avg == 0 {
		avg = defaultAvgDuration
	}
	ratio := s.ShortTermRatio
	if ratio == 0 {
		ratio = defaultShortTermRatio
	}

	switch {
	case ratio > shortTermRatioTrigger:
		return &Insight{
			Kind:        KindBehavior,
			Type:        TypeInfo,
			Priority:    PriorityLow,
			Title:       "Short stays dominate",
			Description: fmt.Sprintf("Average stay is %.1f hours and %.0f%% of drivers leave within an hour", avg, ratio*100),
			Metrics: map[string]float64{
				"avgDuration":       avg,
				"shortTermRatio":    ratio,
				"quickTurnoverRate": ratio * quickTurnoverShare,
			},
			Suggestions: []string{
				"Make the first 30 minutes free",
				"Set up a quick-stop zone next to the entrances",
				"Promote reservations to shorten entrance queues",
				"Raise spot turnover to serve more vehicles per day",
			},
			ExpectedImpact: "Satisfaction up about 15% and daily revenue up 8-12%",
			Action:         Action{Code: ActionOptimizeShortTerm},
		}
	case avg > longDurationTrigger:
		return &Insight{
			Kind:        KindBehavior,
			Type:        TypeInfo,
			Priority:    PriorityLow,
			Title:       "Long stays are growing",
			Description: fmt.Sprintf("Average stay has reached %.1f hours", avg),
			Metrics: map[string]float64{
				"avgDuration":   avg,
				"longTermRatio": 1 - ratio,
			},
			Suggestions: []string{
				"Launch monthly and quarterly passes",
				"Give stays over 6 hours a 20% discount",
				"Offer reserved spots to long-stay customers",
				"Start a membership program with points",
			},
			ExpectedImpact: "Better retention and steadier income",
			Action:         Action{Code: ActionCreateLongTermPackages},
		}
	}
	return nil
}

func analyzeDevices(_ *Generator, s Snapshot) *Insight {
	var faulty []Device
	critical := 0
	for _, d := range s.Devices {
		if d.Status != DeviceFault {
			continue
		}
		if d.CriticalLevel == "" {
			d.CriticalLevel = CriticalMedium
		}
		if d.CriticalLevel == CriticalHigh {
			critical++
		}
		faulty = append(faulty, d)
	}
	if len(faulty) == 0 {
		return nil
	}

	ids := make([]string, 0, len(faulty))
	for _, d := range faulty {
		ids = append(ids, d.ID)
	}

	in := &Insight{
		Kind:        KindDevice,
		Type:        TypeError,
		Priority:    PriorityHigh,
		Title:       "Device fault",
		Description: fmt.Sprintf("%d faulty devices may disrupt operations: %s", len(faulty), strings.Join(ids, ", ")),
		Metrics: map[string]float64{
			"totalFaulty":   float64(len(faulty)),
			"criticalCount": float64(critical),
			"uptime":        float64(len(s.Devices)-len(faulty)) / float64(len(s.Devices)),
		},
		Suggestions: []string{
			"Schedule repairs outside peak hours",
			"Check device logs for the fault cause",
			"Back up device configuration and prepare replacements",
		},
		ExpectedImpact: "Quick repairs avoid complaints and lost revenue",
		Action: Action{
			Code:      ActionScheduleMaintenance,
			DeviceIDs: ids,
		},
		Devices: faulty,
	}
	if critical > 0 {
		in.Priority = PriorityUrgent
		in.Title = "Critical device failure"
		in.Suggestions = []string{
			"Dispatch maintenance staff to critical devices immediately",
			"Switch to backup equipment or manual operation",
			"Notify drivers in affected areas and offer alternatives",
			"Follow up on repair progress every 2 hours",
		}
	}
	return in
}
