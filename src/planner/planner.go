// Order planning for incoming alerts. Pure computation: an alert goes in,
// an ordered list of exchange order payloads comes out. All arithmetic is
// IEEE-754 float64, matching the numeric semantics the exchange sees.
package planner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"alertexecutor/src/model"
)

// Plan translates a normalized alert into the primary market order plus
// any secondary take-profit limit orders.
//
// Take-profit tiers accumulate investment percentage until 100% is
// reached; a tier pushing the total over 100% is clamped to the remainder
// and later tiers are ignored. The last processed tier is promoted to a
// TAKE_PROFIT_MARKET leg embedded in the primary order; every earlier
// tier becomes an independent LIMIT order. Tiers summing to less than
// 100% terminate normally and leave the remainder unallocated.
func Plan(alert *model.Alert) (*model.OrderPlan, error) {
	entry, err := parseNumber("entry", alert.Entry)
	if err != nil {
		return nil, err
	}
	size, err := parseNumber("size", alert.Size)
	if err != nil {
		return nil, err
	}
	stop, err := parseNumber("stop", alert.Stop)
	if err != nil {
		return nil, err
	}
	if entry == 0 {
		return nil, fmt.Errorf("alert entry must be non-zero")
	}

	totalSize := size / entry

	side := model.OrderSideSell
	if alert.Side == model.SideLong {
		side = model.OrderSideBuy
	}

	legs, err := processTiers(alert.Tps, totalSize)
	if err != nil {
		return nil, err
	}

	var mainTakeProfit *model.OrderLeg
	if len(legs) > 0 {
		mainTakeProfit = &legs[len(legs)-1]
	}

	primary := model.OrderRequest{
		Symbol:       alert.Symbol,
		Type:         model.OrderTypeMarket,
		Side:         side,
		PositionSide: alert.Side,
		Quantity:     totalSize,
		TakeProfit:   mainTakeProfit,
		StopLoss: &model.OrderLeg{
			Type:        model.OrderTypeStopMarket,
			StopPrice:   stop,
			Price:       stop,
			WorkingType: model.WorkingTypeMarkPrice,
		},
		ClientOrderID: uuid.NewString(),
	}

	var secondaries []model.OrderRequest
	if len(legs) > 1 {
		for _, leg := range legs[:len(legs)-1] {
			secondaries = append(secondaries, model.OrderRequest{
				Symbol:        alert.Symbol,
				Type:          model.OrderTypeLimit,
				Side:          side,
				PositionSide:  alert.Side,
				Quantity:      leg.Quantity,
				Price:         leg.Price,
				ClientOrderID: uuid.NewString(),
			})
		}
	}

	logger.WithFields(logger.Fields{
		"symbol":      alert.Symbol,
		"side":        side,
		"quantity":    totalSize,
		"secondaries": len(secondaries),
	}).Debug("order plan computed")

	return &model.OrderPlan{Primary: primary, Secondaries: secondaries}, nil
}

// processTiers walks the take-profit tiers and returns the provisional
// legs in tier order, with the last processed leg already promoted to
// TAKE_PROFIT_MARKET.
func processTiers(tiers []model.TakeProfitTier, totalSize float64) ([]model.OrderLeg, error) {
	if len(tiers) == 0 {
		return nil, nil
	}

	firstInvestment, err := parsePercent(tiers[0].Investment)
	if err != nil {
		return nil, err
	}

	// A single 100% tier takes the whole position at its price; every
	// other tier is ignored and the leg carries no quantity.
	if firstInvestment == 100 {
		price, err := parseNumber("tp price", tiers[0].Price)
		if err != nil {
			return nil, err
		}
		return []model.OrderLeg{{
			Type:        model.OrderTypeTakeProfitMarket,
			StopPrice:   price,
			Price:       price,
			WorkingType: model.WorkingTypeMarkPrice,
		}}, nil
	}

	var legs []model.OrderLeg
	cumulative := 0.0
	for _, tier := range tiers {
		if cumulative >= 100 {
			break
		}
		investment, err := parsePercent(tier.Investment)
		if err != nil {
			return nil, err
		}
		if cumulative+investment > 100 {
			investment = 100 - cumulative
		}
		cumulative += investment

		price, err := parseNumber("tp price", tier.Price)
		if err != nil {
			return nil, err
		}
		legs = append(legs, model.OrderLeg{
			Type:        model.OrderTypeTakeProfit,
			StopPrice:   price,
			Price:       price,
			WorkingType: model.WorkingTypeMarkPrice,
			Quantity:    totalSize * (investment / 100),
		})
	}

	if len(legs) > 0 {
		legs[len(legs)-1].Type = model.OrderTypeTakeProfitMarket
	}
	return legs, nil
}

func parseNumber(field, value string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, value, err)
	}
	return f, nil
}

func parsePercent(value string) (float64, error) {
	return parseNumber("investment", strings.Replace(value, "%", "", 1))
}
