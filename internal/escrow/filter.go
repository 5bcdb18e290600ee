package escrow

import (
	"strings"
	"time"

	"golang.org/x/exp/slices"
)

type Role string

const (
	RoleAny    Role = ""
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

type SortBy string

const (
	SortByCreatedAt SortBy = "createdAt"
	SortByAmount    SortBy = "amount"
)

type Filter struct {
	Wallet string
	Role   Role
	Status Status
	Search string
}

// FilterContracts narrows an in-memory contract list the way the dashboard
// does. Status matching uses the locally recomputed status.
func FilterContracts(contracts []Contract, f Filter, now time.Time) []Contract {
	out := make([]Contract, 0, len(contracts))
	wallet := strings.ToLower(f.Wallet)
	search := strings.ToLower(f.Search)

	for _, c := range contracts {
		if f.Status != "" && c.EffectiveStatus(now) != f.Status {
			continue
		}
		if wallet != "" {
			isBuyer := strings.ToLower(c.BuyerAddress) == wallet
			isSeller := strings.ToLower(c.SellerAddress) == wallet
			switch f.Role {
			case RoleBuyer:
				if !isBuyer {
					continue
				}
			case RoleSeller:
				if !isSeller {
					continue
				}
			default:
				if !isBuyer && !isSeller {
					continue
				}
			}
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Description), search) {
			continue
		}
		out = append(out, c)
	}

	return out
}

func SortContracts(contracts []Contract, by SortBy, desc bool) {
	slices.SortStableFunc(contracts, func(a, b Contract) int {
		var cmp int
		switch by {
		case SortByAmount:
			switch {
			case a.Amount < b.Amount:
				cmp = -1
			case a.Amount > b.Amount:
				cmp = 1
			}
		default:
			cmp = a.CreatedAt.Compare(b.CreatedAt)
		}
		if desc {
			return -cmp
		}
		return cmp
	})
}
