package gym

// TrainerStats summarizes trainer workload.
type TrainerStats struct {
	TotalTrainers        int     `json:"totalTrainers"`
	ActiveTrainers       int     `json:"activeTrainers"`
	ActiveClients        int     `json:"activeClients"`
	AvgClientsPerTrainer float64 `json:"avgClientsPerTrainer"`
	UnassignedMembers    int     `json:"unassignedMembers"`
}

// ComputeTrainerStats derives trainer workload. A member counts as unassigned
// when its trainer reference is null, missing, or an empty id; Ref collapses
// all three on decode.
func ComputeTrainerStats(trainers []Trainer, members []Member) TrainerStats {
	stats := TrainerStats{TotalTrainers: len(trainers)}
	for _, trainer := range trainers {
		if trainer.IsActive {
			stats.ActiveTrainers++
		}
	}
	for _, member := range members {
		if !member.IsActive() {
			continue
		}
		if member.AssignedTrainer.Valid() {
			stats.ActiveClients++
		} else {
			stats.UnassignedMembers++
		}
	}
	if stats.ActiveTrainers > 0 {
		stats.AvgClientsPerTrainer = roundTo(float64(stats.ActiveClients)/float64(stats.ActiveTrainers), 1)
	}
	return stats
}
