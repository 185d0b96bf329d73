package fakeapi

import (
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

var activityFactors = map[string]float64{
	"sedentary":  1.2,
	"lightly":    1.375,
	"moderately": 1.55,
	"very":       1.725,
	"extra":      1.9,
}

// assumedAge stands in for the age the questionnaire never asks.
const assumedAge = 30

func (s *Server) submitProfile(c *gin.Context) {
	var p profile
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	factor, ok := activityFactors[p.ActivityLevel]
	if !ok || p.WeightLbs <= 0 || (p.Gender != "male" && p.Gender != "female") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid questionnaire"})
		return
	}
	p.MaintenanceCalories = maintenance(p, factor)
	p.GainCalories = p.MaintenanceCalories + 500
	p.LossCalories = math.Max(p.MaintenanceCalories-500, 1200)

	s.mu.Lock()
	s.profiles[c.GetString(ctxEmail)] = p
	s.mu.Unlock()
	c.JSON(http.StatusOK, p)
}

// maintenance applies the Mifflin-St Jeor equation.
func maintenance(p profile, factor float64) float64 {
	kg := p.WeightLbs * 0.45359237
	cm := float64(p.HeightFeet*12+p.HeightInches) * 2.54
	bmr := 10*kg + 6.25*cm - 5*assumedAge
	if p.Gender == "male" {
		bmr += 5
	} else {
		bmr -= 161
	}
	return math.Round(bmr * factor)
}

func (s *Server) getProfile(c *gin.Context) {
	email := c.GetString(ctxEmail)
	s.mu.Lock()
	p, ok := s.profiles[email]
	first := s.users[email].FirstName
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"firstName":           first,
		"goal":                p.Goal,
		"gender":              p.Gender,
		"heightFeet":          p.HeightFeet,
		"heightInches":        p.HeightInches,
		"weightLbs":           p.WeightLbs,
		"activityLevel":       p.ActivityLevel,
		"maintenanceCalories": p.MaintenanceCalories,
		"gainCalories":        p.GainCalories,
		"lossCalories":        p.LossCalories,
	})
}

func validDate(raw string) bool {
	_, err := time.Parse("2006-01-02", raw)
	return err == nil
}

func (s *Server) getDay(c *gin.Context) {
	date := c.Param("date")
	if !validDate(date) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad date"})
		return
	}
	s.mu.Lock()
	entries := append([]entry(nil), s.days[c.GetString(ctxEmail)][date]...)
	s.mu.Unlock()
	total := 0.0
	for _, e := range entries {
		total += e.Calories
	}
	if entries == nil {
		entries = []entry{}
	}
	c.JSON(http.StatusOK, gin.H{"totalCalories": total, "foodEntries": entries})
}

func (s *Server) addFood(c *gin.Context) {
	date := c.Param("date")
	if !validDate(date) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad date"})
		return
	}
	var e entry
	if err := c.ShouldBindJSON(&e); err != nil || strings.TrimSpace(e.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}
	email := c.GetString(ctxEmail)
	s.mu.Lock()
	s.nextID++
	e.ID = s.nextID
	if s.days[email] == nil {
		s.days[email] = map[string][]entry{}
	}
	s.days[email][date] = append(s.days[email][date], e)
	s.owners[e.ID] = email + "|" + date
	s.mu.Unlock()
	c.JSON(http.StatusCreated, e)
}

func (s *Server) removeFood(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad id"})
		return
	}
	email := c.GetString(ctxEmail)
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, ok := s.owners[id]
	if !ok || !strings.HasPrefix(owner, email+"|") {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}
	date := strings.TrimPrefix(owner, email+"|")
	kept := s.days[email][date][:0]
	for _, e := range s.days[email][date] {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	s.days[email][date] = kept
	delete(s.owners, id)
	c.Status(http.StatusNoContent)
}

func (s *Server) search(c *gin.Context) {
	query := strings.ToLower(strings.TrimSpace(c.Query("query")))
	results := make([]Food, 0)
	for _, f := range s.catalog {
		if query != "" && strings.Contains(strings.ToLower(f.FoodName), query) {
			results = append(results, Food{TagID: f.TagID, FoodName: f.FoodName, BrandName: f.BrandName, NixItemID: f.NixItemID})
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].NixItemID == "" && results[j].NixItemID != "" })
	c.JSON(http.StatusOK, results)
}

// Nutrient numbers go out as strings, as the upstream index does.
func nutrients(f Food) gin.H {
	out := gin.H{
		"foodName":           f.FoodName,
		"calories":           strconv.FormatFloat(f.Calories, 'f', -1, 64),
		"protein":            strconv.FormatFloat(f.Protein, 'f', -1, 64),
		"servingWeightGrams": strconv.FormatFloat(f.ServingWeightGrams, 'f', -1, 64),
	}
	if f.BrandName != "" {
		out["brandName"] = f.BrandName
	}
	return out
}

func (s *Server) brandedNutrients(c *gin.Context) {
	id := c.Param("nixItemId")
	for _, f := range s.catalog {
		if f.NixItemID != "" && f.NixItemID == id {
			c.JSON(http.StatusOK, nutrients(f))
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
}

func (s *Server) commonNutrients(c *gin.Context) {
	name := strings.ToLower(c.Param("foodName"))
	for _, f := range s.catalog {
		if f.NixItemID == "" && strings.ToLower(f.FoodName) == name {
			c.JSON(http.StatusOK, nutrients(f))
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "food not found"})
}

func DefaultCatalog() []Food {
	return []Food{
		{TagID: "1", FoodName: "egg", Calories: 70, Protein: 6, ServingWeightGrams: 50},
		{TagID: "2", FoodName: "apple", Calories: 95, Protein: 0.5, ServingWeightGrams: 182},
		{TagID: "3", FoodName: "banana", Calories: 105, Protein: 1.3, ServingWeightGrams: 118},
		{TagID: "4", FoodName: "oatmeal", Calories: 166, Protein: 5.9, ServingWeightGrams: 234},
		{TagID: "5", FoodName: "chicken breast", Calories: 284, Protein: 53, ServingWeightGrams: 172},
		{TagID: "6", FoodName: "white rice", Calories: 205, Protein: 4.3, ServingWeightGrams: 158},
		{FoodName: "Egg Bites", BrandName: "Sunrise", NixItemID: "nix-egg-bites", Calories: 170, Protein: 12, ServingWeightGrams: 130},
		{FoodName: "Protein Bar", BrandName: "Acme", NixItemID: "nix-protein-bar", Calories: 210, Protein: 20, ServingWeightGrams: 60},
	}
}
