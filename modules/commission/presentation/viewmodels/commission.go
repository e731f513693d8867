package viewmodels

type CommissionRecord struct {
	ID                  string `json:"id"`
	TeamID              string `json:"team_id"`
	EntityRecordID      string `json:"entity_record_id,omitempty"`
	LeadSource          string `json:"lead_source"`
	Kind                string `json:"kind"`
	CapStatus           string `json:"cap_status"`
	RuleRef             string `json:"rule_ref"`
	SplitPercentage     string `json:"split_percentage"`
	RecognitionDate     string `json:"recognition_date"`
	GrossCommission     string `json:"gross_commission"`
	CumulativeGCIBefore string `json:"cumulative_gci_before"`
	CumulativeGCIAfter  string `json:"cumulative_gci_after"`
	GrossAgent          string `json:"gross_agent_commission"`
	TransactionFee      string `json:"transaction_fee"`
	CoordinationFee     string `json:"coordination_fee"`
	FranchiseFee        string `json:"franchise_fee"`
	TotalDeductions     string `json:"total_deductions"`
	NetAgentIncome      string `json:"net_agent_income"`
	CompanyCommission   string `json:"company_commission"`
	OriginalID          string `json:"original_id,omitempty"`
	CorrectionReason    string `json:"correction_reason,omitempty"`
	CorrectedBy         string `json:"corrected_by,omitempty"`
	CreatedAt           string `json:"created_at"`
}

type SplitRule struct {
	ID              int64  `json:"id"`
	LeadSource      string `json:"lead_source"`
	EffectiveYear   int    `json:"effective_year"`
	ThresholdMin    string `json:"gci_threshold_min"`
	ThresholdMax    string `json:"gci_threshold_max,omitempty"`
	SplitPercentage string `json:"split_percentage"`
	Notes           string `json:"notes,omitempty"`
}
