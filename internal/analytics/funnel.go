package analytics

// Stages is the fixed funnel sequence. Order matters: conversion-to-next
// and drop-off compare adjacent stages.
var Stages = []string{"awareness", "interest", "consideration", "conversion", "retention"}

type FunnelStage struct {
	Stage            string  `json:"stage"`
	Visitors         int     `json:"visitors"`
	ConversionToNext float64 `json:"conversionToNext"`
	DropOffRate      float64 `json:"dropOffRate"`
}

// BuildFunnel maps per-stage visitor counts onto the fixed stage sequence.
// Ratios are 0 when the denominator is 0, never NaN or Inf. The final
// stage has no next stage; both ratios stay 0 there.
func BuildFunnel(counts map[string]int) []FunnelStage {
	stages := make([]FunnelStage, len(Stages))
	for i, name := range Stages {
		stages[i] = FunnelStage{Stage: name, Visitors: counts[name]}
	}

	for i := 0; i < len(stages)-1; i++ {
		cur := stages[i].Visitors
		next := stages[i+1].Visitors
		if cur == 0 {
			continue
		}
		stages[i].ConversionToNext = float64(next) / float64(cur)
		stages[i].DropOffRate = float64(cur-next) / float64(cur)
	}

	return stages
}
