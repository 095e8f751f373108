package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezcellular/ezcellular-go/pkg/attr"
)

func TestDecodeCellInfoLTE(t *testing.T) {
	raw := Raw{
		"cell-type":   CellTypeLTE,
		"serving":     true,
		"ci":          "0000a1b2",
		"physical-ci": "1f4",
		"earfcn":      uint32(6300),
		"rsrp":        -97.0,
		"operator-id": "26201",
		"tac":         "112233",
	}

	cell, err := DecodeCellInfo(TechnologyLTE, raw)
	require.NoError(t, err)

	assert.Equal(t, TechnologyLTE, cell.Tech())
	assert.True(t, cell.Serving())

	ci, err := cell.CI()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xA1B2), ci)

	pci, err := cell.PCI()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x1F4), pci)

	earfcn, err := cell.EARFCN()
	require.NoError(t, err)
	assert.Equal(t, uint32(6300), earfcn)

	// Embedded sub-records decode from the same raw map.
	rsrp, err := cell.Signal().RSRP()
	require.NoError(t, err)
	assert.Equal(t, -97.0, rsrp)

	mcc, err := cell.Location().MCC()
	require.NoError(t, err)
	assert.Equal(t, "262", mcc)
}

func TestDecodeCellInfoNR5G(t *testing.T) {
	raw := Raw{
		"cell-type": CellTypeNR5G,
		"nrarfcn":   uint32(640000),
		"rsrp":      -82.0,
	}

	cell, err := DecodeCellInfo(TechnologyNR5G, raw)
	require.NoError(t, err)

	assert.Equal(t, TechnologyNR5G, cell.Tech())
	assert.False(t, cell.Serving())

	nrarfcn, err := cell.NRARFCN()
	require.NoError(t, err)
	assert.Equal(t, uint32(640000), nrarfcn)

	// Neighboring cells report little; the sub-records are just sparse.
	_, err = cell.CI()
	assert.ErrorIs(t, err, attr.ErrMissingKey)
	_, err = cell.Location().MCC()
	assert.ErrorIs(t, err, attr.ErrMissingKey)
}

func TestDecodeCellInfoListPartitions(t *testing.T) {
	raws := []Raw{
		{"cell-type": CellTypeLTE, "serving": true, "earfcn": uint32(100)},
		{"cell-type": CellTypeNR5G, "nrarfcn": uint32(200)},
		{"cell-type": uint32(2)}, // GSM, unsupported
		{"no-cell-type": true},
	}

	cells := DecodeCellInfoList(raws)
	require.Len(t, cells, 2)
	assert.Equal(t, TechnologyLTE, cells[0].Tech())
	assert.Equal(t, TechnologyNR5G, cells[1].Tech())
}

func TestDecodeCellInfoListUnrecognizedOnly(t *testing.T) {
	// Unrecognized cell types contribute zero entries, never an error.
	cells := DecodeCellInfoList([]Raw{
		{"cell-type": uint32(1)},
		{"cell-type": uint32(3)},
	})
	assert.Empty(t, cells)
}

func TestDecodeCellInfoMalformedIdentifiersAbsent(t *testing.T) {
	raw := Raw{
		"cell-type":   CellTypeLTE,
		"ci":          "xyz",
		"physical-ci": "xyz",
	}

	cell, err := DecodeCellInfo(TechnologyLTE, raw)
	require.NoError(t, err)

	_, err = cell.CI()
	assert.ErrorIs(t, err, attr.ErrMissingKey)
	_, err = cell.PCI()
	assert.ErrorIs(t, err, attr.ErrMissingKey)
}
