package wealth

// INR is a helper for test to create rupee money from const
func INR(v float64) Money { return M(v, "INR") }

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }
