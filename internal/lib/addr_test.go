package lib

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddrShort(t *testing.T) {
	require.Equal(t, "0x60E..ec2", AddrShort("0x60EbdC73d89a9f02D1cA0EbcD842650873c4dec2"))
	require.Equal(t, "test", AddrShort("test"))
}
