package handler

import (
	"fmt"

	"github.com/smartpark/smartpark/internal/allocation"
	"github.com/smartpark/smartpark/internal/credit"
	"github.com/smartpark/smartpark/internal/navigation"
	"github.com/smartpark/smartpark/internal/recommendation"
)

func allocationReasonText(r allocation.Reason) string {
	switch r.Code {
	case allocation.ReasonCloseToEntrance:
		return fmt.Sprintf("Close to the entrance (%.0f m)", r.Value)
	case allocation.ReasonSizeFit:
		return fmt.Sprintf("Spot size fits the vehicle (%.0f%% of the spot used)", r.Value*100)
	case allocation.ReasonMatchesPreference:
		return "Matches your preferences"
	case allocation.ReasonAreaQuiet:
		return fmt.Sprintf("Quiet area (%.0f%% occupied)", r.Value*100)
	case allocation.ReasonGoodPrice:
		return fmt.Sprintf("Good price (%.2f per hour)", r.Value)
	default:
		return string(r.Code)
	}
}

func allocationReasons(reasons []allocation.Reason) []string {
	out := make([]string, 0, len(reasons))
	for _, r := range reasons {
		out = append(out, allocationReasonText(r))
	}
	return out
}

func recommendationReasonText(r recommendation.Reason) string {
	switch r.Code {
	case recommendation.ReasonWellBelowBudget:
		return fmt.Sprintf("Well below your usual spend (%.2f per hour)", r.Value)
	case recommendation.ReasonWithinBudget:
		return fmt.Sprintf("Within your usual spend (%.2f per hour)", r.Value)
	case recommendation.ReasonSlightlyAboveBudget:
		return fmt.Sprintf("Slightly above your usual spend (%.2f per hour)", r.Value)
	case recommendation.ReasonVeryClose:
		return fmt.Sprintf("Very close to your destination (%.0f m)", r.Value)
	case recommendation.ReasonShortWalk:
		return fmt.Sprintf("Short walk to your destination (%.0f m)", r.Value)
	case recommendation.ReasonModerateDistance:
		return fmt.Sprintf("Moderate walk to your destination (%.0f m)", r.Value)
	case recommendation.ReasonFrequentLot:
		return "One of your usual lots"
	case recommendation.ReasonPlentyOfSpots:
		return fmt.Sprintf("Plenty of free spots (%.0f)", r.Value)
	case recommendation.ReasonSpotsAvailable:
		return fmt.Sprintf("Spots available (%.0f)", r.Value)
	case recommendation.ReasonFewSpotsLeft:
		return fmt.Sprintf("Only a few spots left (%.0f)", r.Value)
	case recommendation.ReasonExcellentRating:
		return fmt.Sprintf("Excellent rating (%.1f)", r.Value)
	case recommendation.ReasonGoodRating:
		return fmt.Sprintf("Good rating (%.1f)", r.Value)
	case recommendation.ReasonDiscount:
		return "Discount available"
	case recommendation.ReasonEVCharger:
		return "Has EV charging"
	default:
		return string(r.Code)
	}
}

func recommendationReasons(reasons []recommendation.Reason) []string {
	out := make([]string, 0, len(reasons))
	for _, r := range reasons {
		out = append(out, recommendationReasonText(r))
	}
	return out
}

func instructionText(in navigation.Instruction) string {
	switch in.Type {
	case navigation.InstructionDepart:
		if in.Heading == "" {
			return fmt.Sprintf("Start on floor %d", in.Floor)
		}
		return fmt.Sprintf("Start on floor %d heading %s", in.Floor, in.Heading)
	case navigation.InstructionWalkToElevator:
		return fmt.Sprintf("Walk %.0f m to the elevator", in.Distance)
	case navigation.InstructionElevator:
		return fmt.Sprintf("Take the elevator from floor %d to floor %d", in.Floor, in.ToFloor)
	case navigation.InstructionArrival:
		if in.Distance == 0 {
			return fmt.Sprintf("You have arrived on floor %d", in.Floor)
		}
		return fmt.Sprintf("Walk %.0f m to your destination on floor %d", in.Distance, in.Floor)
	default:
		return string(in.Type)
	}
}

func instructionTexts(instructions []navigation.Instruction) []string {
	out := make([]string, 0, len(instructions))
	for _, in := range instructions {
		out = append(out, instructionText(in))
	}
	return out
}

var benefitText = map[credit.Benefit]string{
	credit.BenefitPriorityBooking:    "Priority booking",
	credit.BenefitNoPrepayment:       "No prepayment required",
	credit.BenefitMemberDiscount:     "10% member discount",
	credit.BenefitExtendedCancel:     "Extended free cancellation",
	credit.BenefitStandardBooking:    "Standard booking",
	credit.BenefitStandardDiscount:   "Standard discounts",
	credit.BenefitStandardCancel:     "Standard cancellation",
	credit.BenefitDelayedFeatures:    "New features after general release",
	credit.BenefitStandardRate:       "Standard rates",
	credit.BenefitPrepaymentRequired: "Prepayment required",
	credit.BenefitLimitedBookings:    "Limited number of bookings",
	credit.BenefitNoDiscount:         "No discounts",
	credit.BenefitBookingBlocked:     "Online booking blocked",
	credit.BenefitOnSiteOnly:         "On-site parking only",
	credit.BenefitDepositRequired:    "Deposit required",
}

func benefitTexts(benefits []credit.Benefit) []string {
	out := make([]string, 0, len(benefits))
	for _, b := range benefits {
		if text, ok := benefitText[b]; ok {
			out = append(out, text)
		} else {
			out = append(out, string(b))
		}
	}
	return out
}
