package blockchain

// erc20ABI covers the fungible-token subset the gateway touches.
const erc20ABI = `[
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]}
]`

// escrowABI is the deployed escrow agreement interface. One contract
// instance per agreement, funds held until expiry unless disputed.
const escrowABI = `[
	{"type":"function","name":"getContractInfo","stateMutability":"view","inputs":[],"outputs":[
		{"name":"buyer","type":"address"},
		{"name":"seller","type":"address"},
		{"name":"amount","type":"uint256"},
		{"name":"expiresAt","type":"uint256"},
		{"name":"status","type":"uint8"}
	]},
	{"type":"function","name":"isExpired","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"isFunded","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"isDisputed","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"isClaimed","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"canDeposit","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"canClaim","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"canDispute","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"depositFunds","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"raiseDispute","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"claimFunds","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"submitResolutionVote","stateMutability":"nonpayable","inputs":[{"name":"buyerRefundPercent","type":"uint256"}],"outputs":[]},
	{"type":"event","name":"FundsDeposited","inputs":[{"name":"buyer","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false}],"anonymous":false},
	{"type":"event","name":"DisputeRaised","inputs":[{"name":"party","type":"address","indexed":true}],"anonymous":false},
	{"type":"event","name":"DisputeResolved","inputs":[{"name":"buyerRefundPercent","type":"uint256","indexed":false}],"anonymous":false},
	{"type":"event","name":"FundsClaimed","inputs":[{"name":"seller","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false}],"anonymous":false}
]`
