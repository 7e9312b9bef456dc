package domain

// Milestone is a celebratory marker for a fixed day count.
type Milestone struct {
	Icon    string `json:"icon"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

var milestones = map[int]Milestone{
	3:  {Icon: "🌱", Title: "3 days in!", Message: "A great start. Keep the momentum going!"},
	7:  {Icon: "🔥", Title: "One full week!", Message: "The first step toward a lasting habit."},
	14: {Icon: "💪", Title: "Two weeks done!", Message: "Past the halfway point already!"},
	21: {Icon: "⭐", Title: "Three weeks!", Message: "The habit is taking hold. Almost there!"},
	30: {Icon: "🏆", Title: "30 days complete!", Message: "Congratulations. A perfect run!"},
}

// MilestoneFor returns the milestone for the given day count, or nil when the
// count is not a milestone. Pure lookup; callers own any at-most-once
// delivery bookkeeping.
func MilestoneFor(count int) *Milestone {
	if m, ok := milestones[count]; ok {
		return &m
	}
	return nil
}
