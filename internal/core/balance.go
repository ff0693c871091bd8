package core

// PersonBalance aggregates the non-voided activity of one roster member.
// It is derived on every read and never stored.
type PersonBalance struct {
	Person            string
	Income            Money
	Expense           Money
	TransfersReceived Money
	TransfersGiven    Money
	// Net = Income + TransfersReceived − Expense − TransfersGiven.
	// The group-wide sum of Net is the group's net worth, not a zero-sum
	// check: income and expense are asymmetric by design.
	Net Money
}

// ComputeBalances returns one PersonBalance per roster member, in roster
// order. Voided movements are skipped; members with no activity appear with
// all totals at zero.
func ComputeBalances(movements []Movement, roster []string) []PersonBalance {
	balances := make([]PersonBalance, len(roster))
	index := make(map[string]int, len(roster))
	for i, p := range roster {
		balances[i] = PersonBalance{Person: p}
		index[p] = i
	}
	for _, m := range movements {
		if m.Voided {
			continue
		}
		switch m.Kind {
		case Income:
			if i, ok := index[m.Person]; ok {
				balances[i].Income.Units += m.Amount.Units
			}
		case Expense:
			if i, ok := index[m.Person]; ok {
				balances[i].Expense.Units += m.Amount.Units
			}
		case Transfer:
			if i, ok := index[m.PersonDestination]; ok {
				balances[i].TransfersReceived.Units += m.Amount.Units
			}
			if i, ok := index[m.PersonOrigin]; ok {
				balances[i].TransfersGiven.Units += m.Amount.Units
			}
		}
	}
	for i := range balances {
		b := &balances[i]
		b.Net.Units = b.Income.Units + b.TransfersReceived.Units -
			b.Expense.Units - b.TransfersGiven.Units
	}
	return balances
}

// GroupTotal sums the net balance over all roster members.
func GroupTotal(movements []Movement, roster []string) Money {
	var total int64
	for _, b := range ComputeBalances(movements, roster) {
		total += b.Net.Units
	}
	return Money{Units: total}
}

// Overview is the dashboard summary over the non-voided table.
type Overview struct {
	GroupTotal    Money
	IncomeTotal   Money
	ExpenseTotal  Money
	TransferCount int
}

// ComputeOverview aggregates the headline figures for the dashboard.
func ComputeOverview(movements []Movement, roster []string) Overview {
	ov := Overview{GroupTotal: GroupTotal(movements, roster)}
	for _, m := range movements {
		if m.Voided {
			continue
		}
		switch m.Kind {
		case Income:
			ov.IncomeTotal.Units += m.Amount.Units
		case Expense:
			ov.ExpenseTotal.Units += m.Amount.Units
		case Transfer:
			ov.TransferCount++
		}
	}
	return ov
}
