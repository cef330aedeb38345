package geodesy

import (
	"math"

	"github.com/jobrunner/geodatum/internal/domain"
)

// GaussForward projects p onto the Gauss-Krüger plane of e using zones of
// the given width.
//
// The returned X is the east-west term with zone*1e6 + 500000 folded in, Y is
// the north-south term (the classical Gauss x and y swapped). Height passes
// through unchanged.
func GaussForward(p domain.GeodeticPoint, e domain.Ellipsoid, width domain.ZoneWidth) (domain.GaussPlanePoint, error) {
	if err := width.Validate(); err != nil {
		return domain.GaussPlanePoint{}, err
	}
	if err := p.Validate(); err != nil {
		return domain.GaussPlanePoint{}, err
	}
	if math.Abs(p.Latitude) >= 90 {
		return domain.GaussPlanePoint{}, &domain.SingularityError{
			Operation: "gauss forward",
			Reason:    "latitude at a pole, tan(B) unbounded",
		}
	}

	zone := width.ZoneOf(p.Longitude)
	lon0 := DegreesToRadians(width.CentralMeridian(zone))
	lon := DegreesToRadians(p.Longitude)
	lat := DegreesToRadians(p.Latitude)

	ee := e.EE()
	sinLat, cosLat := math.Sincos(lat)
	tanLat := sinLat / cosLat

	n := e.PrimeVerticalRadius(lat)
	t := tanLat * tanLat
	c := ee * cosLat * cosLat
	a := (lon - lon0) * cosLat
	m := meridianArc(lat, e)

	a2 := a * a
	a3 := a2 * a
	a4 := a3 * a
	a5 := a4 * a
	a6 := a5 * a

	x := n * (a + (1-t+c)*a3/6 + (5-18*t+t*t+14*c-58*ee)*a5/120)
	y := m + n*tanLat*(a2/2+(5-t+9*c+4*c*c)*a4/24+(61-58*t+t*t+270*c-330*ee)*a6/720)

	return domain.GaussPlanePoint{
		X: x + float64(zone)*domain.ZoneFactor + domain.FalseEasting,
		Y: y,
		H: p.Height,
	}, nil
}

// GaussReverse converts a plane point whose X carries its zone number back
// to geodetic coordinates on e.
func GaussReverse(p domain.GaussPlanePoint, e domain.Ellipsoid, width domain.ZoneWidth) (domain.GeodeticPoint, error) {
	if err := p.Validate(); err != nil {
		return domain.GeodeticPoint{}, err
	}
	stripped, zone := p.StripZone()
	return GaussReverseInZone(stripped, e, width, zone)
}

// GaussReverseInZone converts a plane point in the given zone back to
// geodetic coordinates on e. X must carry only the 500000 m false easting.
func GaussReverseInZone(p domain.GaussPlanePoint, e domain.Ellipsoid, width domain.ZoneWidth, zone int) (domain.GeodeticPoint, error) {
	if err := width.Validate(); err != nil {
		return domain.GeodeticPoint{}, err
	}
	if err := p.Validate(); err != nil {
		return domain.GeodeticPoint{}, err
	}

	lon0 := DegreesToRadians(width.CentralMeridian(zone))
	x := p.Y
	y := p.X - domain.FalseEasting

	bf := footpointLatitude(x, e)
	sinBf, cosBf := math.Sincos(bf)
	if math.Abs(cosBf) < 1e-12 {
		return domain.GeodeticPoint{}, &domain.SingularityError{
			Operation: "gauss reverse",
			Reason:    "footpoint latitude at a pole",
		}
	}

	e2 := e.E2()
	tf := sinBf / cosBf
	tf2 := tf * tf
	tf4 := tf2 * tf2
	nf2 := e.EE() * cosBf * cosBf
	wf := math.Sqrt(1 - e2*sinBf*sinBf)
	mf := e.A() * (1 - e2) / (wf * wf * wf)
	nf := e.A() / wf

	nf3 := nf * nf * nf
	nf5 := nf3 * nf * nf
	y2 := y * y
	y3 := y2 * y
	y4 := y3 * y
	y5 := y4 * y
	y6 := y5 * y

	lon := lon0 + y/(nf*cosBf) -
		(1+2*tf2+nf2)*y3/(6*nf3*cosBf) +
		(5+28*tf2+24*tf4)*y5/(120*nf5*cosBf)

	lat := bf - tf*y2/(2*mf*nf) +
		tf*(5+3*tf2+nf2-9*nf2*tf2)*y4/(24*mf*nf3) -
		tf*(61+90*tf2+45*tf4)*y6/(720*mf*nf5)

	return domain.GeodeticPoint{
		Latitude:  RadiansToDegrees(lat),
		Longitude: RadiansToDegrees(lon),
		Height:    p.H,
	}, nil
}

// meridianArc returns the meridian arc length from the equator to lat
// (radians), truncated after the e2³ terms.
func meridianArc(lat float64, e domain.Ellipsoid) float64 {
	e2 := e.E2()
	e4 := e2 * e2
	e6 := e4 * e2

	return e.A() * ((1-e2/4-3*e4/64-5*e6/256)*lat -
		(3*e2/8+3*e4/32+45*e6/1024)*math.Sin(2*lat) +
		(15*e4/256+45*e6/1024)*math.Sin(4*lat) -
		(35*e6/3072)*math.Sin(6*lat))
}

// footpointLatitude returns the latitude (radians) whose meridian arc length
// is x, from a closed series in e2 up to e2^8 (e^16).
func footpointLatitude(x float64, e domain.Ellipsoid) float64 {
	e2 := e.E2()
	e4 := e2 * e2
	e6 := e4 * e2
	e8 := e6 * e2
	e10 := e8 * e2
	e12 := e10 * e2
	e14 := e12 * e2
	e16 := e14 * e2

	c0 := 1 + e2/4 + 7*e4/64 + 15*e6/256 + 579*e8/16384 + 1515*e10/65536 +
		16837*e12/1048576 + 48997*e14/4194304 + 9467419*e16/1073741824
	c0 = e.A() / c0

	b0 := x / c0

	d1 := 3*e2/8 + 45*e4/128 + 175*e6/512 + 11025*e8/32768 + 43659*e10/131072 +
		693693*e12/2097152 + 10863435*e14/33554432
	d2 := -21*e4/64 - 277*e6/384 - 19413*e8/16384 - 56331*e10/32768 -
		2436477*e12/1048576 - 196473*e14/65536
	d3 := 151*e6/384 + 5707*e8/4096 + 53189*e10/163840 + 4599609*e12/655360 +
		15842375*e14/1048576
	d4 := -1097*e8/2048 - 1687*e10/640 - 3650333*e12/327680 - 114459079*e14/27525120
	d5 := 8011*e10/1024 + 874457*e12/98304 + 216344925*e14/3670016
	d6 := -682193*e12/245760 - 46492223*e14/1146880
	d7 := 36941521 * e14 / 3440640

	s := math.Sin(b0)
	s2 := s * s
	return b0 + math.Sin(2*b0)*(d1+s2*(d2+s2*(d3+s2*(d4+s2*(d5+s2*(d6+d7*s2))))))
}
