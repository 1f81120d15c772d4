package service

// SetBcryptCost lowers hashing cost so account tests stay fast.
func (a *Accounts) SetBcryptCost(cost int) {
	a.bcryptCost = []int{cost}
}
