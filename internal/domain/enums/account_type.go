package enums

type AccountType string

const (
	AccountTypeFree    AccountType = "free"
	AccountTypePremium AccountType = "premium"
	AccountTypeVIP     AccountType = "vip"
)

// Paid reports whether the tier is exempt from daily free quotas.
func (t AccountType) Paid() bool {
	return t == AccountTypePremium || t == AccountTypeVIP
}

func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeFree, AccountTypePremium, AccountTypeVIP:
		return true
	}
	return false
}
