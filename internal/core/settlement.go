package core

import (
	"fmt"
	"sort"
	"strings"
)

type (
	// Payment is one proposed debtor→creditor transfer of the plan.
	Payment struct {
		Debtor   string
		Creditor string
		Amount   Money
	}

	// SettlementPlan equalizes expense contributions across the roster.
	// Only Expense movements feed it; income and transfers settle overall
	// balance, not expense fairness, and are excluded.
	SettlementPlan struct {
		Total Money
		// EqualShare is the real-valued ideal contribution per person.
		// It is kept unrounded through the computation; only payment
		// amounts and reported figures are truncated.
		EqualShare float64
		// Balances maps each roster member to expense − equal share.
		// Positive means overpaid (creditor), negative underpaid.
		Balances map[string]float64
		// ExpenseByPerson holds the raw expense totals, roster order.
		ExpenseByPerson []PersonBalance
		Payments        []Payment
		// Summary is the human-readable explanation, one line per entry.
		Summary []string
	}

	party struct {
		person string
		amount float64
	}
)

// PlanSettlement computes the greedy minimum-cash-flow plan over the
// non-voided expense movements.
//
// Largest debtor is matched against largest creditor until one list runs
// out; both lists are sorted descending with a stable sort, so equal
// magnitudes keep roster order and the plan is deterministic. Payment
// amounts are floor-truncated at output, which can leave a residual below
// one unit per person when the total does not divide evenly by the roster
// size; the residual is deliberately not reconciled.
func PlanSettlement(movements []Movement, roster []string) SettlementPlan {
	expenses := ComputeBalances(movements, roster)
	var total int64
	for _, b := range expenses {
		total += b.Expense.Units
	}
	ideal := 0.0
	if len(roster) > 0 {
		ideal = float64(total) / float64(len(roster))
	}

	balances := make(map[string]float64, len(roster))
	var debtors, creditors []party
	for _, b := range expenses {
		bal := float64(b.Expense.Units) - ideal
		balances[b.Person] = bal
		switch {
		case bal < 0:
			debtors = append(debtors, party{person: b.Person, amount: -bal})
		case bal > 0:
			creditors = append(creditors, party{person: b.Person, amount: bal})
		}
	}
	sort.SliceStable(debtors, func(i, j int) bool { return debtors[i].amount > debtors[j].amount })
	sort.SliceStable(creditors, func(i, j int) bool { return creditors[i].amount > creditors[j].amount })

	var payments []Payment
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		settle := debtors[i].amount
		if creditors[j].amount < settle {
			settle = creditors[j].amount
		}
		payments = append(payments, Payment{
			Debtor:   debtors[i].person,
			Creditor: creditors[j].person,
			Amount:   Money{Units: int64(settle)},
		})
		debtors[i].amount -= settle
		creditors[j].amount -= settle
		if debtors[i].amount == 0 {
			i++
		}
		if creditors[j].amount == 0 {
			j++
		}
	}

	plan := SettlementPlan{
		Total:           Money{Units: total},
		EqualShare:      ideal,
		Balances:        balances,
		ExpenseByPerson: expenses,
		Payments:        payments,
	}
	plan.Summary = buildSummary(plan, roster)
	return plan
}

func buildSummary(plan SettlementPlan, roster []string) []string {
	lines := []string{
		fmt.Sprintf("Entre todos se gastó: %d", plan.Total.Units),
		fmt.Sprintf("Éramos %d personas, por lo que a cada uno le corresponde idealmente: %d",
			len(roster), int64(plan.EqualShare)),
		"",
		"Resumen individual:",
	}
	for _, b := range plan.ExpenseByPerson {
		bal := plan.Balances[b.Person]
		switch {
		case bal > 0:
			lines = append(lines, fmt.Sprintf(" - %s gastó %d (aportó %d de más)",
				b.Person, b.Expense.Units, int64(bal)))
		case bal < 0:
			lines = append(lines, fmt.Sprintf(" - %s gastó %d (le faltó aportar %d)",
				b.Person, b.Expense.Units, int64(-bal)))
		default:
			lines = append(lines, fmt.Sprintf(" - %s gastó %d (justo el ideal)",
				b.Person, b.Expense.Units))
		}
	}
	lines = append(lines, "", "Ajustes propuestos:")
	if len(plan.Payments) == 0 {
		lines = append(lines, " - No se requieren ajustes: todos gastaron lo mismo.")
		return lines
	}
	for _, p := range plan.Payments {
		lines = append(lines, fmt.Sprintf(" - %s debe pagar %d a %s",
			p.Debtor, p.Amount.Units, p.Creditor))
	}
	return lines
}

// SummaryText joins the summary lines into a single block.
func (p SettlementPlan) SummaryText() string {
	return strings.Join(p.Summary, "\n")
}
