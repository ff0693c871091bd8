package core

import "testing"

var testRoster = []string{"Alice", "Bob", "Carol"}

func TestComputeBalancesIncomeAndTransfer(t *testing.T) {
	// An income of 5000 for Alice and a transfer of 1000 Alice→Bob.
	movements := []Movement{
		{Kind: Income, Person: "Alice", Amount: Money{Units: 5000}},
		{Kind: Transfer, PersonOrigin: "Alice", PersonDestination: "Bob", Amount: Money{Units: 1000}},
	}
	balances := ComputeBalances(movements, testRoster)

	if got := balances[0].Net.Units; got != 4000 {
		t.Errorf("Alice net = %d, want 4000", got)
	}
	if got := balances[1].Net.Units; got != 1000 {
		t.Errorf("Bob net = %d, want 1000", got)
	}
	if got := balances[1].TransfersReceived.Units; got != 1000 {
		t.Errorf("Bob transfers received = %d, want 1000", got)
	}
}

func TestComputeBalancesVoidedExcluded(t *testing.T) {
	// Same as above but the transfer is voided.
	movements := []Movement{
		{Kind: Income, Person: "Alice", Amount: Money{Units: 5000}},
		{Kind: Transfer, PersonOrigin: "Alice", PersonDestination: "Bob", Amount: Money{Units: 1000}, Voided: true},
	}
	balances := ComputeBalances(movements, testRoster)

	if got := balances[0].Net.Units; got != 5000 {
		t.Errorf("Alice net = %d, want 5000", got)
	}
	if got := balances[1].Net.Units; got != 0 {
		t.Errorf("Bob net = %d, want 0", got)
	}
}

func TestComputeBalancesInactiveMember(t *testing.T) {
	movements := []Movement{
		{Kind: Expense, Person: "Alice", Amount: Money{Units: 300}},
	}
	balances := ComputeBalances(movements, testRoster)
	carol := balances[2]
	if carol.Person != "Carol" {
		t.Fatalf("roster order lost: %+v", balances)
	}
	if carol.Income.Units != 0 || carol.Expense.Units != 0 ||
		carol.TransfersGiven.Units != 0 || carol.TransfersReceived.Units != 0 ||
		carol.Net.Units != 0 {
		t.Errorf("inactive member should be all zeros: %+v", carol)
	}
}

func TestComputeBalancesIgnoresStrangers(t *testing.T) {
	// Movements for someone outside the roster don't blow up or leak in.
	movements := []Movement{
		{Kind: Expense, Person: "Mallory", Amount: Money{Units: 999}},
	}
	balances := ComputeBalances(movements, testRoster)
	for _, b := range balances {
		if b.Expense.Units != 0 {
			t.Errorf("%s picked up a stranger's expense", b.Person)
		}
	}
}

func TestComputeOverview(t *testing.T) {
	movements := []Movement{
		{Kind: Income, Person: "Alice", Amount: Money{Units: 5000}},
		{Kind: Expense, Person: "Bob", Amount: Money{Units: 1200}},
		{Kind: Transfer, PersonOrigin: "Alice", PersonDestination: "Bob", Amount: Money{Units: 400}},
		{Kind: Transfer, PersonOrigin: "Bob", PersonDestination: "Carol", Amount: Money{Units: 100}, Voided: true},
	}
	ov := ComputeOverview(movements, testRoster)
	if ov.IncomeTotal.Units != 5000 {
		t.Errorf("income total = %d", ov.IncomeTotal.Units)
	}
	if ov.ExpenseTotal.Units != 1200 {
		t.Errorf("expense total = %d", ov.ExpenseTotal.Units)
	}
	if ov.TransferCount != 1 {
		t.Errorf("transfer count = %d, want 1 (voided excluded)", ov.TransferCount)
	}
	// Transfers are internal: group total is income − expense.
	if ov.GroupTotal.Units != 3800 {
		t.Errorf("group total = %d, want 3800", ov.GroupTotal.Units)
	}
}
