package lib

// AddrShort abbreviates a hex address for log output, e.g.
// "0x60EbdC73d89a9f02D1cA0EbcD842650873c4dec2" becomes "0x60E..ec2".
// Strings too short to abbreviate are returned unchanged.
func AddrShort(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:5] + ".." + addr[len(addr)-3:]
}
