package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPlan 计划文档结构不合法
var ErrInvalidPlan = errors.New("invalid fitness plan")

// FitnessPlan 训练计划模板
type FitnessPlan struct {
	Name string `json:"name" yaml:"name"`
	Days []Day  `json:"days" yaml:"days"`
}

// Day 单日训练与饮食
type Day struct {
	Day       string     `json:"day" yaml:"day"`
	Exercises []Exercise `json:"exercises" yaml:"exercises"`
	Diet      []Meal     `json:"diet" yaml:"diet"`
}

// Exercise 训练动作，Progress 为唯一可变字段
type Exercise struct {
	Name     string `json:"name" yaml:"name"`
	Sets     int    `json:"sets" yaml:"sets"`
	Reps     int    `json:"reps" yaml:"reps"`
	Progress int    `json:"progress" yaml:"progress"`
}

// Meal 餐次
type Meal struct {
	Meal  string   `json:"meal" yaml:"meal"`
	Foods []string `json:"foods" yaml:"foods"`
}

// DietPlan 助手通话结束后给出的饮食方案
type DietPlan struct {
	Name          string     `json:"name" yaml:"name"`
	DailyCalories int        `json:"daily_calories" yaml:"daily_calories"`
	Meals         []DietMeal `json:"meals" yaml:"meals"`
}

// DietMeal 饮食方案中的一餐
type DietMeal struct {
	Name  string   `json:"name" yaml:"name"`
	Foods []string `json:"foods" yaml:"foods"`
}

// Clone 深拷贝计划，用户工作副本不得与模板共享切片
func (p *FitnessPlan) Clone() *FitnessPlan {
	if p == nil {
		return nil
	}
	out := &FitnessPlan{Name: p.Name, Days: make([]Day, len(p.Days))}
	for i, day := range p.Days {
		copied := Day{Day: day.Day}
		copied.Exercises = append([]Exercise(nil), day.Exercises...)
		copied.Diet = make([]Meal, len(day.Diet))
		for j, meal := range day.Diet {
			copied.Diet[j] = Meal{Meal: meal.Meal, Foods: append([]string(nil), meal.Foods...)}
		}
		out.Days[i] = copied
	}
	return out
}

// ExerciseCount 统计全部训练动作数
func (p *FitnessPlan) ExerciseCount() int {
	if p == nil {
		return 0
	}
	total := 0
	for _, day := range p.Days {
		total += len(day.Exercises)
	}
	return total
}

// Validate 校验计划结构
func (p *FitnessPlan) Validate() error {
	if p == nil {
		return ErrInvalidPlan
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPlan)
	}
	for i, day := range p.Days {
		for j, exercise := range day.Exercises {
			if strings.TrimSpace(exercise.Name) == "" {
				return fmt.Errorf("%w: day %d exercise %d has no name", ErrInvalidPlan, i, j)
			}
			if exercise.Sets < 0 || exercise.Reps < 0 {
				return fmt.Errorf("%w: day %d exercise %d has negative sets or reps", ErrInvalidPlan, i, j)
			}
		}
	}
	return nil
}

// DecodeFitnessPlan 将外部文档转换为计划并校验，进度统一收敛到 0..100
func DecodeFitnessPlan(doc JSON) (*FitnessPlan, error) {
	if doc == nil {
		return nil, ErrInvalidPlan
	}
	var plan FitnessPlan
	if err := doc.DecodeInto(&plan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	for i := range plan.Days {
		for j := range plan.Days[i].Exercises {
			plan.Days[i].Exercises[j].Progress = ClampProgress(plan.Days[i].Exercises[j].Progress)
		}
	}
	return &plan, nil
}

// ClampProgress 进度限制在 [0,100]
func ClampProgress(value int) int {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}
