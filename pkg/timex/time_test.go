package timex

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTime_UnixMethods(t *testing.T) {
	// 创建一个固定时间
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tt := Time(now)

	if tt.Unix() != now.Unix() {
		t.Errorf("Unix() = %v, want %v", tt.Unix(), now.Unix())
	}
	if tt.UnixMilli() != now.UnixMilli() {
		t.Errorf("UnixMilli() = %v, want %v", tt.UnixMilli(), now.UnixMilli())
	}
	if tt.UnixMicro() != now.UnixMicro() {
		t.Errorf("UnixMicro() = %v, want %v", tt.UnixMicro(), now.UnixMicro())
	}
	if tt.UnixNano() != now.UnixNano() {
		t.Errorf("UnixNano() = %v, want %v", tt.UnixNano(), now.UnixNano())
	}

	// 通过等待一会确认它不是返回 time.Now()
	time.Sleep(10 * time.Millisecond)
	if tt.Unix() != now.Unix() {
		t.Errorf("Unix() changed after sleep, it should be static. got %v, want %v", tt.Unix(), now.Unix())
	}
}

func TestTime_JSONRoundTrip(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 30, 0, 0, time.Local)
	in := Time(now)

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() err = %v", err)
	}
	if string(data) != `"2024-06-01 08:30:00"` {
		t.Errorf("Marshal() = %s", data)
	}

	var out Time
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() err = %v", err)
	}
	if !out.Time().Equal(now) {
		t.Errorf("round trip = %v, want %v", out.Time(), now)
	}
}

func TestTime_ZeroValue(t *testing.T) {
	var zero Time

	data, err := json.Marshal(zero)
	if err != nil {
		t.Fatalf("Marshal() err = %v", err)
	}
	if string(data) != `""` {
		t.Errorf("Marshal(zero) = %s, want empty string", data)
	}

	v, err := zero.Value()
	if err != nil {
		t.Fatalf("Value() err = %v", err)
	}
	if v != nil {
		t.Errorf("Value(zero) = %v, want nil", v)
	}
}
