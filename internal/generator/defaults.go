package generator

// Built-in catalogs tuned for the Elexon Insights (BMRS) document. They are
// plain data; callers may replace or extend them through configuration.

// DefaultPairGroups are field pairs that travel together across the BMRS
// dataset schemas and deserve a shared named mixin.
func DefaultPairGroups() []PairGroup {
	return []PairGroup{
		{Name: "Settlement", Wires: []string{"settlementDate", "settlementPeriod"}},
		{Name: "TimeRange", Wires: []string{"timeFrom", "timeTo"}},
		{Name: "LevelRange", Wires: []string{"levelFrom", "levelTo"}},
		{Name: "BmUnit", Wires: []string{"bmUnit", "nationalGridBmUnit"}},
		{Name: "DocumentRevision", Wires: []string{"documentId", "documentRevisionNumber"}},
	}
}

// DefaultBehaviors attach derived accessors to models carrying well-known
// BMRS fields.
func DefaultBehaviors() []BehaviorRule {
	return []BehaviorRule{
		{Wire: "settlementDate", Methods: []string{"SettlementKey", "SettlementTime"}},
		{Wire: "fuelType", Methods: []string{"IsRenewable", "IsInterconnector"}},
		{Wire: "psrType", Methods: []string{"PsrCategory"}},
		{Wire: "flowDirection", Methods: []string{"IsOffer", "IsBid"}},
		{Wire: "publishTime", Methods: []string{"PublishedAfter"}},
	}
}

// DefaultOverrides pin fields that upstream marks optional but that every
// observed payload carries. All entries are wildcards; document-declared
// required lists still lose to these only when they disagree.
func DefaultOverrides() []Override {
	required := []string{
		"dataset",
		"publishTime",
		"startTime",
		"settlementDate",
		"settlementPeriod",
		"fuelType",
		"psrType",
		"bmUnit",
		"nationalGridBmUnit",
		"timeFrom",
		"timeTo",
		"levelFrom",
		"levelTo",
		"quantity",
		"generation",
		"demand",
	}
	out := make([]Override, 0, len(required))
	for _, f := range required {
		out = append(out, Override{Schema: "*", Field: f, Value: true})
	}
	return out
}
