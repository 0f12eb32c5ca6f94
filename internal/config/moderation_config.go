package config

import "time"

const (
	// Trust levels
	TrustLevelNewcomer = "newcomer"
	TrustLevelTrusted  = "trusted"
	TrustLevelVeteran  = "veteran"

	// Helpfulness score weights
	ReactionWeight = 10
	MessageWeight  = 2
	ReportPenalty  = 20
	MaxHelpfulness = 100

	// Level thresholds (a single report vetoes both)
	VeteranMinMessages  = 20
	VeteranMinReactions = 20
	TrustedMinMessages  = 5
	TrustedMinReactions = 5

	// Moderation
	AutoMuteReportThreshold = 3
	AutoMuteDuration        = 7 * 24 * time.Hour
	DefaultMuteDays         = 7

	// Suspicious activity probes
	RapidJoinWindow      = time.Hour
	RapidJoinThreshold   = 5
	SuspiciousMinReports = 2
	LowHelpfulnessFloor  = 20
	LowHelpfulnessMinMsg = 10
)

const (
	// Message safety scoring
	DangerWordWeight  = 3
	ConcernWordWeight = 1
	MaxRiskScore      = 10
	FlagRiskThreshold = 7
)

var DangerWords = []string{"kill", "kill myself", "hurt", "harm", "suicide", "die"}

var ConcernWords = []string{"scared", "afraid", "danger", "threat"}
