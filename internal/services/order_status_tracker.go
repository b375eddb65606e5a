package services

import "storefront-checkout/internal/models"

// OrderStages is the fulfilment timeline shown to shoppers.
var OrderStages = []models.OrderStatus{
	models.OrderConfirmed,
	models.OrderProcessing,
	models.OrderShipped,
	models.OrderDelivered,
}

var stageLabels = map[models.OrderStatus]string{
	models.OrderConfirmed:  "Order Confirmed",
	models.OrderProcessing: "Processing",
	models.OrderShipped:    "Shipped",
	models.OrderDelivered:  "Delivered",
}

type StageView struct {
	Status    models.OrderStatus `json:"status"`
	Label     string             `json:"label"`
	Completed bool               `json:"completed"`
	Current   bool               `json:"current"`
}

// OrderProgress is the projection of an order status onto OrderStages.
// CurrentStage is -1 for a cancelled order.
type OrderProgress struct {
	Status       models.OrderStatus `json:"status"`
	CurrentStage int                `json:"current_stage"`
	Cancelled    bool               `json:"cancelled"`
	Stages       []StageView        `json:"stages"`
}

// CompletionRatio is the fraction of the timeline reached, from 0.25 at
// confirmation to 1 at delivery. Cancelled orders have no ratio.
func (p OrderProgress) CompletionRatio() (float64, bool) {
	if p.Cancelled || p.CurrentStage < 0 {
		return 0, false
	}
	return float64(p.CurrentStage+1) / float64(len(OrderStages)), true
}

// TrackOrderStatus projects status onto the stage timeline. A pending order
// is shown at the first stage.
func TrackOrderStatus(status models.OrderStatus) OrderProgress {
	progress := OrderProgress{
		Status: status,
		Stages: make([]StageView, len(OrderStages)),
	}

	current := stageIndex(status)
	if status == models.OrderCancelled {
		progress.Cancelled = true
		current = -1
	}
	progress.CurrentStage = current

	for i, stage := range OrderStages {
		progress.Stages[i] = StageView{
			Status:    stage,
			Label:     stageLabels[stage],
			Completed: current >= 0 && i <= current,
			Current:   i == current,
		}
	}
	return progress
}

func stageIndex(status models.OrderStatus) int {
	switch status {
	case models.OrderPending, models.OrderConfirmed:
		return 0
	case models.OrderProcessing:
		return 1
	case models.OrderShipped:
		return 2
	case models.OrderDelivered:
		return 3
	}
	return -1
}
