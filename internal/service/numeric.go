package service

import "math"

// round1 四舍五入到一位小数
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// round2 四舍五入到两位小数
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// floor1 截断到一位小数（分布各档之和不超过 100）
func floor1(v float64) float64 {
	return math.Floor(v*10+1e-6) / 10
}

// percent n/d*100，一位小数；d 为 0 时返回 0
func percent(n, d int64) float64 {
	if d <= 0 {
		return 0
	}
	return round1(float64(n) / float64(d) * 100)
}

// growthRate (current-prior)/prior*100，一位小数；prior 为 0 时返回 0
func growthRate(current, prior float64) float64 {
	if prior == 0 {
		return 0
	}
	return round1((current - prior) / prior * 100)
}

// clamp 将数值限制在指定范围内
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
