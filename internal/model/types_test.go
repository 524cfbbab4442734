package model

import "testing"

func TestParseVehicleClass(t *testing.T) {
	cases := []struct {
		raw  string
		want VehicleClass
	}{
		{"car", ClassCar},
		{"Car", ClassCar},
		{" TRUCK ", ClassTruck},
		{"bicycle", ClassBicycle},
		{"scooter", ClassScooter},
		{"motorcycle", ClassMotorcycle},
		{"carriage", ClassOther},
		{"", ClassOther},
	}
	for _, tc := range cases {
		if got := ParseVehicleClass(tc.raw); got != tc.want {
			t.Fatalf("ParseVehicleClass(%q) = %q, expected %q", tc.raw, got, tc.want)
		}
	}
}

func TestTwoWheeled(t *testing.T) {
	for _, class := range []VehicleClass{ClassBicycle, ClassScooter, ClassMotorcycle} {
		if !class.TwoWheeled() {
			t.Fatalf("%q should be two-wheeled", class)
		}
	}
	for _, class := range []VehicleClass{ClassCar, ClassTruck, ClassBus, ClassVan, ClassOther} {
		if class.TwoWheeled() {
			t.Fatalf("%q should not be two-wheeled", class)
		}
	}
}
