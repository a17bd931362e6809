package service

import (
	"reflect"
	"testing"
)

func TestFanoutDistricts_HomePlusNeighbors(t *testing.T) {
	got := FanoutDistricts("Ludhiana", []string{"Moga", "Barnala", "Jalandhar"})
	want := []string{"Ludhiana", "Moga", "Barnala", "Jalandhar"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FanoutDistricts = %v, want %v", got, want)
	}
}

func TestFanoutDistricts_Deduplicates(t *testing.T) {
	got := FanoutDistricts("Ludhiana", []string{"Moga", "ludhiana", "Moga", ""})
	want := []string{"Ludhiana", "Moga"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FanoutDistricts = %v, want %v", got, want)
	}
}

func TestFanoutDistricts_NoNeighbors(t *testing.T) {
	got := FanoutDistricts("Ludhiana", nil)
	if len(got) != 1 || got[0] != "Ludhiana" {
		t.Errorf("FanoutDistricts = %v, want just the home district", got)
	}
}
