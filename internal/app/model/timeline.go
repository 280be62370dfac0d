package model

// progression is the forward path shown to customers tracking an order.
var progression = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
}

type TimelineStep struct {
	Status    OrderStatus `json:"status"`
	Completed bool        `json:"completed"`
	Current   bool        `json:"current"`
}

type StatusTimeline struct {
	Status   OrderStatus    `json:"status"`
	Terminal bool           `json:"terminal"`
	Steps    []TimelineStep `json:"steps"`
}

// BuildTimeline marks every step up to the current status as completed.
// Cancelled and returned orders are terminal and carry no steps.
func BuildTimeline(status OrderStatus) StatusTimeline {
	current := -1
	for i, s := range progression {
		if s == status {
			current = i
			break
		}
	}
	if current < 0 {
		return StatusTimeline{Status: status, Terminal: true, Steps: []TimelineStep{}}
	}

	steps := make([]TimelineStep, len(progression))
	for i, s := range progression {
		steps[i] = TimelineStep{
			Status:    s,
			Completed: i <= current,
			Current:   i == current,
		}
	}
	return StatusTimeline{Status: status, Steps: steps}
}
