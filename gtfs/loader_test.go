package gtfs_test

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/transit-router/gtfs"
	"github.com/theoremus-urban-solutions/transit-router/internal/testutil"
)

func TestLoadCaltrain(t *testing.T) {
	feed := testutil.LoadFeed(t, "caltrain")

	assert.Equal(t, "Caltrain", feed.DefaultAgencyID())
	assert.Len(t, feed.Stops, 7)
	assert.Len(t, feed.Routes, 2)
	assert.Len(t, feed.Trips, 6)
	assert.Len(t, feed.FareAttributes, 4)
	assert.Len(t, feed.FareRules, 16)
	assert.Len(t, feed.CalendarDates, 2)

	mb := feed.Stops["Millbrae Caltrain"]
	require.NotNil(t, mb)
	assert.Equal(t, "2", mb.ZoneID)
	assert.Equal(t, 1, mb.WheelchairBoarding)

	sts := feed.StopTimes["13201"]
	require.Len(t, sts, 7)
	assert.Equal(t, "San Francisco Caltrain", sts[0].StopID)
	assert.Equal(t, gtfs.MissingTime, sts[3].Arrival)
	assert.Equal(t, 13*3600+39*60, sts[2].Departure)
	assert.Negative(t, sts[0].ShapeDistTraveled)

	bullet := feed.StopTimes["12451"]
	assert.Equal(t, gtfs.PickupNone, bullet[1].DropOffType)
	assert.Equal(t, gtfs.PickupNone, bullet[4].PickupType)

	ow2 := feed.FareAttributes["OW_2"]
	require.NotNil(t, ow2)
	assert.InDelta(t, 4.25, ow2.Price, 1e-9)
	assert.Equal(t, "USD", ow2.CurrencyType)
	assert.Equal(t, 0, ow2.Transfers)

	loc, err := feed.Timezone()
	require.NoError(t, err)
	assert.Equal(t, "America/Los_Angeles", loc.String())

	ls := feed.ShapeLine("cal_sf_sj")
	assert.Len(t, ls, 9)
}

func TestLoadPortland(t *testing.T) {
	feed := testutil.LoadFeed(t, "portland")

	fr := feed.Frequencies["90W1"]
	require.Len(t, fr, 1)
	assert.Equal(t, 7*3600, fr[0].StartTime)
	assert.Equal(t, 10*3600, fr[0].EndTime)
	assert.Equal(t, 900, fr[0].HeadwaySecs)

	// an empty transfers column means unlimited
	assert.Equal(t, -1, feed.FareAttributes["TwoZone"].Transfers)
	assert.Equal(t, 5400, feed.FareAttributes["TwoZone"].TransferDuration)
}

func TestLoadFromZip(t *testing.T) {
	dir := testutil.FeedPath("fake")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		w, err := zw.Create(e.Name())
		require.NoError(t, err)
		_, err = w.Write(b)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	feed, err := gtfs.LoadFeedFromBytes(buf.Bytes())
	require.NoError(t, err)
	assert.Len(t, feed.Trips, 5)
	require.Len(t, feed.Transfers, 1)
	assert.Equal(t, 120, feed.Transfers[0].MinTransferTime)
	assert.Equal(t, "b1", feed.Trips["T1"].BlockID)
}

func TestMissingRequiredFile(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("agency.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("agency_id,agency_name,agency_url,agency_timezone\na,A,http://a,UTC\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = gtfs.LoadFeedFromBytes(buf.Bytes())
	assert.ErrorIs(t, err, gtfs.ErrMissingFile)
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"08:00:00", 8 * 3600, false},
		{"25:01:02", 25*3600 + 62, false},
		{"", gtfs.MissingTime, false},
		{" 7:05:00", 7*3600 + 300, false},
		{"08:60:00", 0, true},
		{"8:00", 0, true},
		{"a:b:c", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := gtfs.ParseTime(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if got >= 0 {
				back, err := gtfs.ParseTime(gtfs.FormatTime(got))
				require.NoError(t, err)
				assert.Equal(t, got, back)
			}
		})
	}
}
