package model

import "github.com/shopspring/decimal"

// DashboardStats is the aggregate snapshot shown on the dashboard and fed to
// the assistant as conversation context.
type DashboardStats struct {
	TotalMembers             int             `json:"totalMembers"`
	ActiveMembers            int             `json:"activeMembers"`
	TotalSavings             decimal.Decimal `json:"totalSavings"`
	AverageSavingsPerMember  decimal.Decimal `json:"averageSavingsPerMember"`
	TotalLoansDisbursed      decimal.Decimal `json:"totalLoansDisbursed"`
	ActiveLoansCount         int             `json:"activeLoansCount"`
	TotalRepaymentsCollected decimal.Decimal `json:"totalRepaymentsCollected"`
	PendingRepayments        int             `json:"pendingRepayments"`
	OverdueRepayments        int             `json:"overdueRepayments"`
	MembersByVillage         map[string]int  `json:"membersByVillage"`
}
